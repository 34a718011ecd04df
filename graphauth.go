// Package graphauth is the entry point for signed cookie verification,
// OAuth token exchange and authorization URL building against a Graph-style
// identity provider.
package graphauth

import (
	"github.com/goliatone/go-graphauth/core"
	"github.com/goliatone/go-graphauth/transport"
)

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type AppCredentials = core.AppCredentials
type SignedEnvelope = core.SignedEnvelope
type SessionInfo = core.SessionInfo
type SessionSource = core.SessionSource
type AccessTokenInfo = core.AccessTokenInfo
type URLOptions = core.URLOptions
type TokenRequestOptions = core.TokenRequestOptions
type RequestOptions = core.RequestOptions
type APIError = core.APIError
type EnvelopeError = core.EnvelopeError

const (
	SessionSourceSigned = core.SessionSourceSigned
	SessionSourceLegacy = core.SessionSourceLegacy
)

var (
	ErrMalformedEnvelope    = core.ErrMalformedEnvelope
	ErrUnsupportedAlgorithm = core.ErrUnsupportedAlgorithm
	ErrSignatureMismatch    = core.ErrSignatureMismatch
	ErrRedirectURIRequired  = core.ErrRedirectURIRequired
	ErrAPI                  = core.ErrAPI
)

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorFactory       = core.WithErrorFactory
	WithErrorMapper        = core.WithErrorMapper
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithTransport          = core.WithTransport
	WithEnvelopeVerifier   = core.WithEnvelopeVerifier
	WithAppTokenCache      = core.WithAppTokenCache
	WithClock              = core.WithClock
	WithRequestIDGenerator = core.WithRequestIDGenerator
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewService builds a Service. Without WithTransport the service talks to
// the token endpoints through a net/http backed GraphTransport.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	all := make([]Option, 0, len(opts)+1)
	all = append(all, core.WithTransport(transport.NewGraphTransport(nil)))
	all = append(all, opts...)
	return core.NewService(cfg, all...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}
