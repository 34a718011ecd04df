package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-graphauth/core"
)

type TokenService interface {
	ExchangeCode(ctx context.Context, code string, redirectURI string, opts core.TokenRequestOptions) (core.AccessTokenInfo, error)
	ExchangeCodeDefault(ctx context.Context, code string, opts core.TokenRequestOptions) (core.AccessTokenInfo, error)
	AppToken(ctx context.Context, opts core.TokenRequestOptions) (core.AccessTokenInfo, error)
	InvalidateAppToken(ctx context.Context) error
	ExchangeSessionKeys(ctx context.Context, sessions []string, opts core.TokenRequestOptions) ([]*core.AccessTokenInfo, error)
}

type ExchangeCodeCommand struct {
	service TokenService
}

func NewExchangeCodeCommand(service TokenService) *ExchangeCodeCommand {
	return &ExchangeCodeCommand{service: service}
}

func (c *ExchangeCodeCommand) Execute(ctx context.Context, msg ExchangeCodeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: code exchange service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	var (
		out core.AccessTokenInfo
		err error
	)
	if msg.UseCallbackURL {
		out, err = c.service.ExchangeCodeDefault(ctx, msg.Code, msg.Options)
	} else {
		out, err = c.service.ExchangeCode(ctx, msg.Code, msg.RedirectURI, msg.Options)
	}
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type AppTokenCommand struct {
	service TokenService
}

func NewAppTokenCommand(service TokenService) *AppTokenCommand {
	return &AppTokenCommand{service: service}
}

func (c *AppTokenCommand) Execute(ctx context.Context, msg AppTokenMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: app token service is required")
	}
	out, err := c.service.AppToken(ctx, msg.Options)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type InvalidateAppTokenCommand struct {
	service TokenService
}

func NewInvalidateAppTokenCommand(service TokenService) *InvalidateAppTokenCommand {
	return &InvalidateAppTokenCommand{service: service}
}

func (c *InvalidateAppTokenCommand) Execute(ctx context.Context, _ InvalidateAppTokenMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: app token service is required")
	}
	return c.service.InvalidateAppToken(ctx)
}

type ExchangeSessionKeysCommand struct {
	service TokenService
}

func NewExchangeSessionKeysCommand(service TokenService) *ExchangeSessionKeysCommand {
	return &ExchangeSessionKeysCommand{service: service}
}

// Execute stores the token slot list, index-aligned with msg.Sessions.
func (c *ExchangeSessionKeysCommand) Execute(ctx context.Context, msg ExchangeSessionKeysMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: session key exchange service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.ExchangeSessionKeys(ctx, msg.Sessions, msg.Options)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
