package core

import (
	"fmt"
	"strings"
)

const redactedValue = "[REDACTED]"

// AppCredentials identify the client application. Values are fixed at
// construction; the secret is only reachable through Secret().
type AppCredentials struct {
	appID       string
	appSecret   string
	callbackURL string
}

func NewAppCredentials(appID, appSecret, callbackURL string) AppCredentials {
	return AppCredentials{
		appID:       strings.TrimSpace(appID),
		appSecret:   appSecret,
		callbackURL: strings.TrimSpace(callbackURL),
	}
}

func (c AppCredentials) AppID() string { return c.appID }

func (c AppCredentials) Secret() string { return c.appSecret }

func (c AppCredentials) CallbackURL() string { return c.callbackURL }

func (c AppCredentials) SignedCookieName() string { return "fbsr_" + c.appID }

func (c AppCredentials) LegacyCookieName() string { return "fbs_" + c.appID }

func (c AppCredentials) String() string {
	return fmt.Sprintf(
		"AppCredentials{AppID:%q AppSecret:%s CallbackURL:%q}",
		c.appID,
		redactedSecret(c.appSecret),
		c.callbackURL,
	)
}

func (c AppCredentials) GoString() string {
	return c.String()
}

func redactedSecret(secret string) string {
	if secret == "" {
		return `""`
	}
	return redactedValue
}
