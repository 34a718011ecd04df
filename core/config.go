package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultGraphHost           = "graph.facebook.com"
	DefaultDialogHost          = "www.facebook.com"
	DefaultTokenRequestTimeout = 30 * time.Second
	defaultAppTokenKeyPrefix   = "graphauth::app_token::v1"
)

type Config struct {
	AppID                  string        `koanf:"app_id" mapstructure:"app_id"`
	AppSecret              string        `koanf:"app_secret" mapstructure:"app_secret"`
	CallbackURL            string        `koanf:"callback_url" mapstructure:"callback_url"`
	GraphHost              string        `koanf:"graph_host" mapstructure:"graph_host"`
	DialogHost             string        `koanf:"dialog_host" mapstructure:"dialog_host"`
	TokenRequestTimeout    time.Duration `koanf:"token_request_timeout" mapstructure:"token_request_timeout"`
	AllowInsecureHTTP      bool          `koanf:"allow_insecure_http" mapstructure:"allow_insecure_http"`
	AppTokenCacheKeyPrefix string        `koanf:"app_token_cache_key_prefix" mapstructure:"app_token_cache_key_prefix"`
}

func DefaultConfig() Config {
	return Config{
		GraphHost:              DefaultGraphHost,
		DialogHost:             DefaultDialogHost,
		TokenRequestTimeout:    DefaultTokenRequestTimeout,
		AppTokenCacheKeyPrefix: defaultAppTokenKeyPrefix,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.AppID) == "" {
		return fmt.Errorf("core: app_id is required")
	}
	if strings.TrimSpace(c.AppSecret) == "" {
		return fmt.Errorf("core: app_secret is required")
	}
	if strings.TrimSpace(c.GraphHost) == "" {
		return fmt.Errorf("core: graph_host is required")
	}
	if strings.TrimSpace(c.DialogHost) == "" {
		return fmt.Errorf("core: dialog_host is required")
	}
	if c.TokenRequestTimeout < 0 {
		return fmt.Errorf("core: token_request_timeout is invalid")
	}
	return nil
}

// RequestDefaults are the transport options applied to every token call.
func (c Config) RequestDefaults() RequestOptions {
	requireTLS := !c.AllowInsecureHTTP
	return RequestOptions{
		RequireTLS: &requireTLS,
		Timeout:    c.TokenRequestTimeout,
	}
}

// Credentials extracts the immutable application credentials.
func (c Config) Credentials() AppCredentials {
	return NewAppCredentials(c.AppID, c.AppSecret, c.CallbackURL)
}

// String never renders the app secret.
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{AppID:%q AppSecret:%s CallbackURL:%q GraphHost:%q DialogHost:%q}",
		c.AppID,
		redactedSecret(c.AppSecret),
		c.CallbackURL,
		c.GraphHost,
		c.DialogHost,
	)
}

func (c Config) GoString() string {
	return c.String()
}
