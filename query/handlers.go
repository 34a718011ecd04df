package query

import (
	"context"

	"github.com/goliatone/go-graphauth/core"
)

type SessionReader interface {
	ResolveSession(ctx context.Context, cookies map[string]string) (core.SessionInfo, bool, error)
	UserIDFromCookies(ctx context.Context, cookies map[string]string) (string, bool, error)
	ParseLegacyCookie(ctx context.Context, raw string) (core.SessionInfo, bool)
}

type EnvelopeReader interface {
	VerifyEnvelope(ctx context.Context, token string) (core.SignedEnvelope, error)
}

type URLBuilder interface {
	AuthorizeURL(ctx context.Context, opts core.URLOptions) (string, error)
	DialogURL(ctx context.Context, dialogType string, opts core.URLOptions) (string, error)
	TokenURL(ctx context.Context, code string, opts core.URLOptions) (string, error)
}

// SessionLookup separates "no session" (Found false) from a failed lookup,
// which is reported as an error instead.
type SessionLookup struct {
	Session core.SessionInfo
	Found   bool
}

type UserIDLookup struct {
	UserID string
	Found  bool
}

type ResolveSessionQuery struct {
	reader SessionReader
}

func NewResolveSessionQuery(reader SessionReader) *ResolveSessionQuery {
	return &ResolveSessionQuery{reader: reader}
}

func (q *ResolveSessionQuery) Query(ctx context.Context, msg ResolveSessionMessage) (SessionLookup, error) {
	if q == nil || q.reader == nil {
		return SessionLookup{}, queryDependencyError("query: session reader is required")
	}
	session, found, err := q.reader.ResolveSession(ctx, msg.Cookies)
	if err != nil {
		return SessionLookup{}, err
	}
	return SessionLookup{Session: session, Found: found}, nil
}

type UserIDFromCookiesQuery struct {
	reader SessionReader
}

func NewUserIDFromCookiesQuery(reader SessionReader) *UserIDFromCookiesQuery {
	return &UserIDFromCookiesQuery{reader: reader}
}

func (q *UserIDFromCookiesQuery) Query(ctx context.Context, msg UserIDFromCookiesMessage) (UserIDLookup, error) {
	if q == nil || q.reader == nil {
		return UserIDLookup{}, queryDependencyError("query: session reader is required")
	}
	id, found, err := q.reader.UserIDFromCookies(ctx, msg.Cookies)
	if err != nil {
		return UserIDLookup{}, err
	}
	return UserIDLookup{UserID: id, Found: found}, nil
}

type ParseLegacyCookieQuery struct {
	reader SessionReader
}

func NewParseLegacyCookieQuery(reader SessionReader) *ParseLegacyCookieQuery {
	return &ParseLegacyCookieQuery{reader: reader}
}

func (q *ParseLegacyCookieQuery) Query(ctx context.Context, msg ParseLegacyCookieMessage) (SessionLookup, error) {
	if q == nil || q.reader == nil {
		return SessionLookup{}, queryDependencyError("query: session reader is required")
	}
	if err := msg.Validate(); err != nil {
		return SessionLookup{}, err
	}
	session, found := q.reader.ParseLegacyCookie(ctx, msg.Raw)
	return SessionLookup{Session: session, Found: found}, nil
}

type VerifyEnvelopeQuery struct {
	reader EnvelopeReader
}

func NewVerifyEnvelopeQuery(reader EnvelopeReader) *VerifyEnvelopeQuery {
	return &VerifyEnvelopeQuery{reader: reader}
}

func (q *VerifyEnvelopeQuery) Query(ctx context.Context, msg VerifyEnvelopeMessage) (core.SignedEnvelope, error) {
	if q == nil || q.reader == nil {
		return core.SignedEnvelope{}, queryDependencyError("query: envelope reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.SignedEnvelope{}, err
	}
	return q.reader.VerifyEnvelope(ctx, msg.Token)
}

type AuthorizeURLQuery struct {
	builder URLBuilder
}

func NewAuthorizeURLQuery(builder URLBuilder) *AuthorizeURLQuery {
	return &AuthorizeURLQuery{builder: builder}
}

func (q *AuthorizeURLQuery) Query(ctx context.Context, msg AuthorizeURLMessage) (string, error) {
	if q == nil || q.builder == nil {
		return "", queryDependencyError("query: url builder is required")
	}
	return q.builder.AuthorizeURL(ctx, msg.Options)
}

type DialogURLQuery struct {
	builder URLBuilder
}

func NewDialogURLQuery(builder URLBuilder) *DialogURLQuery {
	return &DialogURLQuery{builder: builder}
}

func (q *DialogURLQuery) Query(ctx context.Context, msg DialogURLMessage) (string, error) {
	if q == nil || q.builder == nil {
		return "", queryDependencyError("query: url builder is required")
	}
	if err := msg.Validate(); err != nil {
		return "", err
	}
	return q.builder.DialogURL(ctx, msg.DialogType, msg.Options)
}

type TokenURLQuery struct {
	builder URLBuilder
}

func NewTokenURLQuery(builder URLBuilder) *TokenURLQuery {
	return &TokenURLQuery{builder: builder}
}

func (q *TokenURLQuery) Query(ctx context.Context, msg TokenURLMessage) (string, error) {
	if q == nil || q.builder == nil {
		return "", queryDependencyError("query: url builder is required")
	}
	if err := msg.Validate(); err != nil {
		return "", err
	}
	return q.builder.TokenURL(ctx, msg.Code, msg.Options)
}
