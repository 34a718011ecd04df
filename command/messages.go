package command

import (
	"strings"

	"github.com/goliatone/go-graphauth/core"
)

const (
	TypeExchangeCode        = "graphauth.command.code.exchange"
	TypeAppToken            = "graphauth.command.app_token.issue"
	TypeInvalidateAppToken  = "graphauth.command.app_token.invalidate"
	TypeExchangeSessionKeys = "graphauth.command.session_keys.exchange"
)

// ExchangeCodeMessage trades an authorization code for an access token.
// When UseCallbackURL is set the configured callback URL replaces
// RedirectURI.
type ExchangeCodeMessage struct {
	Code           string
	RedirectURI    string
	UseCallbackURL bool
	Options        core.TokenRequestOptions
}

func (ExchangeCodeMessage) Type() string { return TypeExchangeCode }

func (m ExchangeCodeMessage) Validate() error {
	if strings.TrimSpace(m.Code) == "" {
		return commandValidationError("code", "authorization code is required")
	}
	return nil
}

type AppTokenMessage struct {
	Options core.TokenRequestOptions
}

func (AppTokenMessage) Type() string { return TypeAppToken }

func (AppTokenMessage) Validate() error { return nil }

type InvalidateAppTokenMessage struct{}

func (InvalidateAppTokenMessage) Type() string { return TypeInvalidateAppToken }

func (InvalidateAppTokenMessage) Validate() error { return nil }

type ExchangeSessionKeysMessage struct {
	Sessions []string
	Options  core.TokenRequestOptions
}

func (ExchangeSessionKeysMessage) Type() string { return TypeExchangeSessionKeys }

func (m ExchangeSessionKeysMessage) Validate() error {
	if len(m.Sessions) == 0 {
		return commandValidationError("sessions", "at least one session key is required")
	}
	for _, session := range m.Sessions {
		if strings.TrimSpace(session) == "" {
			return commandValidationError("sessions", "session keys must not be blank")
		}
	}
	return nil
}
