package inbound

import (
	"context"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-graphauth/core"
)

// SessionResolver is satisfied by core.Service and core.CookieSessionResolver.
type SessionResolver interface {
	ResolveSession(ctx context.Context, cookies map[string]string) (core.SessionInfo, bool, error)
}

type sessionContextKey struct{}

// ErrorHandler reacts to a session that could not be resolved.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type MiddlewareOption func(*middlewareOptions)

type middlewareOptions struct {
	onError  ErrorHandler
	required bool
}

// WithErrorHandler replaces the default 401 JSON response for malformed
// session cookies.
func WithErrorHandler(handler ErrorHandler) MiddlewareOption {
	return func(o *middlewareOptions) {
		if handler != nil {
			o.onError = handler
		}
	}
}

// WithSessionRequired rejects requests that carry no session with 401.
func WithSessionRequired() MiddlewareOption {
	return func(o *middlewareOptions) {
		o.required = true
	}
}

// CookieMap collects request cookies by name. When a name repeats the first
// cookie wins, matching http.Request.Cookie.
func CookieMap(r *http.Request) map[string]string {
	cookies := map[string]string{}
	if r == nil {
		return cookies
	}
	for _, cookie := range r.Cookies() {
		if _, exists := cookies[cookie.Name]; exists {
			continue
		}
		cookies[cookie.Name] = cookie.Value
	}
	return cookies
}

// SessionMiddleware resolves the session from request cookies and stores it
// on the request context. Requests without a session pass through unless
// WithSessionRequired is set.
func SessionMiddleware(resolver SessionResolver, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	options := middlewareOptions{onError: defaultErrorHandler}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				next.ServeHTTP(w, r)
				return
			}
			session, found, err := resolver.ResolveSession(r.Context(), CookieMap(r))
			if err != nil {
				options.onError(w, r, err)
				return
			}
			if !found {
				if options.required {
					options.onError(w, r, inboundWrapError(
						nil,
						goerrors.CategoryAuth,
						"inbound: session required",
						http.StatusUnauthorized,
						core.ErrorUnauthorized,
					))
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
		})
	}
}

func ContextWithSession(ctx context.Context, session core.SessionInfo) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext returns the session stored by SessionMiddleware.
func SessionFromContext(ctx context.Context) (core.SessionInfo, bool) {
	if ctx == nil {
		return core.SessionInfo{}, false
	}
	session, ok := ctx.Value(sessionContextKey{}).(core.SessionInfo)
	return session, ok
}

// defaultErrorHandler answers 401 for rejected cookies. Upstream failures
// keep their own status.
func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	mapped := core.MapError(err)
	switch mapped.Category {
	case goerrors.CategoryExternal, goerrors.CategoryInternal:
		WriteError(w, mapped)
	default:
		WriteError(w, unauthorizedError(mapped))
	}
}
