package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-graphauth/core"
)

var (
	_ gocmd.Commander[ExchangeCodeMessage]        = (*ExchangeCodeCommand)(nil)
	_ gocmd.Commander[AppTokenMessage]            = (*AppTokenCommand)(nil)
	_ gocmd.Commander[InvalidateAppTokenMessage]  = (*InvalidateAppTokenCommand)(nil)
	_ gocmd.Commander[ExchangeSessionKeysMessage] = (*ExchangeSessionKeysCommand)(nil)

	_ TokenService = (*core.Service)(nil)
)
