package graphauth

import (
	"fmt"

	graphcommand "github.com/goliatone/go-graphauth/command"
	graphquery "github.com/goliatone/go-graphauth/query"
)

type CommandQueryService interface {
	graphcommand.TokenService
	graphquery.SessionReader
	graphquery.EnvelopeReader
	graphquery.URLBuilder
}

type Commands struct {
	ExchangeCode        *graphcommand.ExchangeCodeCommand
	AppToken            *graphcommand.AppTokenCommand
	InvalidateAppToken  *graphcommand.InvalidateAppTokenCommand
	ExchangeSessionKeys *graphcommand.ExchangeSessionKeysCommand
}

type Queries struct {
	ResolveSession    *graphquery.ResolveSessionQuery
	UserIDFromCookies *graphquery.UserIDFromCookiesQuery
	ParseLegacyCookie *graphquery.ParseLegacyCookieQuery
	VerifyEnvelope    *graphquery.VerifyEnvelopeQuery
	AuthorizeURL      *graphquery.AuthorizeURLQuery
	DialogURL         *graphquery.DialogURLQuery
	TokenURL          *graphquery.TokenURLQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("graphauth: command/query service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		ExchangeCode:        graphcommand.NewExchangeCodeCommand(service),
		AppToken:            graphcommand.NewAppTokenCommand(service),
		InvalidateAppToken:  graphcommand.NewInvalidateAppTokenCommand(service),
		ExchangeSessionKeys: graphcommand.NewExchangeSessionKeysCommand(service),
	}
	facade.queries = Queries{
		ResolveSession:    graphquery.NewResolveSessionQuery(service),
		UserIDFromCookies: graphquery.NewUserIDFromCookiesQuery(service),
		ParseLegacyCookie: graphquery.NewParseLegacyCookieQuery(service),
		VerifyEnvelope:    graphquery.NewVerifyEnvelopeQuery(service),
		AuthorizeURL:      graphquery.NewAuthorizeURLQuery(service),
		DialogURL:         graphquery.NewDialogURLQuery(service),
		TokenURL:          graphquery.NewTokenURLQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (*Service)(nil)
