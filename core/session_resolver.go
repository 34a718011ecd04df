package core

import (
	"context"
	"errors"
	"time"
)

// CookieSessionResolver recovers the caller's session from request cookies,
// preferring the signed fbsr_ cookie over the legacy fbs_ cookie.
type CookieSessionResolver struct {
	credentials AppCredentials
	verifier    EnvelopeVerifier
	exchanger   CodeExchanger
	now         func() time.Time
}

func NewCookieSessionResolver(
	credentials AppCredentials,
	verifier EnvelopeVerifier,
	exchanger CodeExchanger,
	now func() time.Time,
) *CookieSessionResolver {
	if verifier == nil {
		verifier = NewHMACEnvelopeVerifier(credentials.Secret())
	}
	if now == nil {
		now = time.Now
	}
	return &CookieSessionResolver{
		credentials: credentials,
		verifier:    verifier,
		exchanger:   exchanger,
		now:         now,
	}
}

// ResolveSession returns the session carried by cookies. A missing or
// unauthenticated session is reported as false with a nil error; an error
// means the signed cookie was present but malformed, or the transport failed.
func (r *CookieSessionResolver) ResolveSession(ctx context.Context, cookies map[string]string) (SessionInfo, bool, error) {
	if r == nil {
		return SessionInfo{}, false, nil
	}
	if token, ok := cookies[r.credentials.SignedCookieName()]; ok {
		return r.resolveSigned(ctx, token)
	}
	if raw, ok := cookies[r.credentials.LegacyCookieName()]; ok {
		session, found := ParseLegacyCookie(raw, r.credentials.Secret(), r.now())
		return session, found, nil
	}
	return SessionInfo{}, false, nil
}

func (r *CookieSessionResolver) resolveSigned(ctx context.Context, token string) (SessionInfo, bool, error) {
	envelope, err := r.verifier.Verify(token)
	if err != nil {
		return SessionInfo{}, false, err
	}
	if envelope.Fields["code"] == nil || r.exchanger == nil {
		return SessionInfo{}, false, nil
	}

	// The cookie flow never carries a redirect URI.
	tokenInfo, err := r.exchanger.ExchangeCode(ctx, envelope.Code, "", TokenRequestOptions{})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return SessionInfo{}, false, nil
		}
		return SessionInfo{}, false, err
	}

	fields := envelope.StringFields()
	for key, value := range tokenInfo.Fields {
		fields[key] = value
	}
	return newSessionInfo(SessionSourceSigned, fields), true, nil
}

// UserIDFromCookies resolves the session and returns its user identifier.
func (r *CookieSessionResolver) UserIDFromCookies(ctx context.Context, cookies map[string]string) (string, bool, error) {
	session, found, err := r.ResolveSession(ctx, cookies)
	if err != nil || !found {
		return "", false, err
	}
	id := session.ID()
	return id, id != "", nil
}
