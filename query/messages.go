package query

import (
	"strings"

	"github.com/goliatone/go-graphauth/core"
)

const (
	TypeResolveSession   = "graphauth.query.session.resolve"
	TypeVerifyEnvelope   = "graphauth.query.envelope.verify"
	TypeParseLegacy      = "graphauth.query.legacy_cookie.parse"
	TypeAuthorizeURL     = "graphauth.query.url.authorize"
	TypeDialogURL        = "graphauth.query.url.dialog"
	TypeTokenURL         = "graphauth.query.url.token"
	TypeUserIDFromCookie = "graphauth.query.session.user_id"
)

// ResolveSessionMessage carries the request cookies by name.
type ResolveSessionMessage struct {
	Cookies map[string]string
}

func (ResolveSessionMessage) Type() string { return TypeResolveSession }

func (ResolveSessionMessage) Validate() error { return nil }

type UserIDFromCookiesMessage struct {
	Cookies map[string]string
}

func (UserIDFromCookiesMessage) Type() string { return TypeUserIDFromCookie }

func (UserIDFromCookiesMessage) Validate() error { return nil }

type VerifyEnvelopeMessage struct {
	Token string
}

func (VerifyEnvelopeMessage) Type() string { return TypeVerifyEnvelope }

func (m VerifyEnvelopeMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return queryValidationError("token", "signed envelope token is required")
	}
	return nil
}

type ParseLegacyCookieMessage struct {
	Raw string
}

func (ParseLegacyCookieMessage) Type() string { return TypeParseLegacy }

func (m ParseLegacyCookieMessage) Validate() error {
	if strings.TrimSpace(m.Raw) == "" {
		return queryValidationError("raw", "legacy cookie value is required")
	}
	return nil
}

type AuthorizeURLMessage struct {
	Options core.URLOptions
}

func (AuthorizeURLMessage) Type() string { return TypeAuthorizeURL }

func (AuthorizeURLMessage) Validate() error { return nil }

type DialogURLMessage struct {
	DialogType string
	Options    core.URLOptions
}

func (DialogURLMessage) Type() string { return TypeDialogURL }

func (m DialogURLMessage) Validate() error {
	if strings.TrimSpace(m.DialogType) == "" {
		return queryValidationError("dialog_type", "dialog type is required")
	}
	return nil
}

type TokenURLMessage struct {
	Code    string
	Options core.URLOptions
}

func (TokenURLMessage) Type() string { return TypeTokenURL }

func (m TokenURLMessage) Validate() error {
	if strings.TrimSpace(m.Code) == "" {
		return queryValidationError("code", "authorization code is required")
	}
	return nil
}
