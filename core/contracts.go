package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// TransportRequest is a fully resolved HTTP request handed to a TransportAdapter.
type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	NoFollowRedirects    bool
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// RequestOptions are passed through to the HTTP collaborator untouched.
// A nil RequireTLS means TLS is required.
type RequestOptions struct {
	Method            string
	RequireTLS        *bool
	Timeout           time.Duration
	NoFollowRedirects bool
	Headers           map[string]string
}

// TLSRequired reports the effective TLS requirement.
func (o RequestOptions) TLSRequired() bool {
	if o.RequireTLS == nil {
		return true
	}
	return *o.RequireTLS
}

// GraphRequest addresses a path on the API host. Params are sent in the query
// string for GET requests and as a form body otherwise.
type GraphRequest struct {
	Host    string
	Path    string
	Params  map[string]string
	Method  string
	Options RequestOptions
}

type GraphResponse struct {
	StatusCode int
	Body       string
}

// GraphTransport is the HTTP collaborator used for every network round trip.
type GraphTransport interface {
	Perform(ctx context.Context, req GraphRequest) (GraphResponse, error)
}

// TokenRequestOptions customises a token endpoint call. Params override the
// default request parameters on key conflict.
type TokenRequestOptions struct {
	Params map[string]string
	HTTP   RequestOptions
}

// EnvelopeVerifier checks signed envelope tokens.
type EnvelopeVerifier interface {
	Verify(token string) (SignedEnvelope, error)
}

// CodeExchanger turns an authorization code into an access token.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string, redirectURI string, opts TokenRequestOptions) (AccessTokenInfo, error)
}

// GraphAuthService is the full operation surface exposed by Service.
type GraphAuthService interface {
	AuthorizeURL(ctx context.Context, opts URLOptions) (string, error)
	DialogURL(ctx context.Context, dialogType string, opts URLOptions) (string, error)
	TokenURL(ctx context.Context, code string, opts URLOptions) (string, error)
	VerifyEnvelope(ctx context.Context, token string) (SignedEnvelope, error)
	ParseLegacyCookie(ctx context.Context, raw string) (SessionInfo, bool)
	ResolveSession(ctx context.Context, cookies map[string]string) (SessionInfo, bool, error)
	UserIDFromCookies(ctx context.Context, cookies map[string]string) (string, bool, error)
	ExchangeCode(ctx context.Context, code string, redirectURI string, opts TokenRequestOptions) (AccessTokenInfo, error)
	ExchangeCodeDefault(ctx context.Context, code string, opts TokenRequestOptions) (AccessTokenInfo, error)
	AppToken(ctx context.Context, opts TokenRequestOptions) (AccessTokenInfo, error)
	InvalidateAppToken(ctx context.Context) error
	ExchangeSessionKeys(ctx context.Context, sessions []string, opts TokenRequestOptions) ([]*AccessTokenInfo, error)
	ExchangeSessionKey(ctx context.Context, session string, opts TokenRequestOptions) (*AccessTokenInfo, error)
}
