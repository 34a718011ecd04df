package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-graphauth/core"
)

var (
	_ gocmd.Querier[ResolveSessionMessage, SessionLookup]       = (*ResolveSessionQuery)(nil)
	_ gocmd.Querier[UserIDFromCookiesMessage, UserIDLookup]     = (*UserIDFromCookiesQuery)(nil)
	_ gocmd.Querier[ParseLegacyCookieMessage, SessionLookup]    = (*ParseLegacyCookieQuery)(nil)
	_ gocmd.Querier[VerifyEnvelopeMessage, core.SignedEnvelope] = (*VerifyEnvelopeQuery)(nil)
	_ gocmd.Querier[AuthorizeURLMessage, string]                = (*AuthorizeURLQuery)(nil)
	_ gocmd.Querier[DialogURLMessage, string]                   = (*DialogURLQuery)(nil)
	_ gocmd.Querier[TokenURLMessage, string]                    = (*TokenURLQuery)(nil)

	_ SessionReader  = (*core.Service)(nil)
	_ EnvelopeReader = (*core.Service)(nil)
	_ URLBuilder     = (*core.Service)(nil)
)
