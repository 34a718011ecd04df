package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

const serviceLoggerName = "graphauth"

type Service struct {
	config          Config
	credentials     AppCredentials
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	transport       GraphTransport
	verifier        EnvelopeVerifier
	urls            *AuthorizationURLBuilder
	tokens          *TokenExchangeClient
	resolver        *CookieSessionResolver
	appTokens       *CachedAppTokenSource
	now             func() time.Time
	requestID       func() string
}

type ServiceDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorFactory    ErrorFactory
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	Transport       GraphTransport
	Verifier        EnvelopeVerifier
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	// An explicit provider wins over an explicit logger; with neither the
	// service logs to a nop logger.
	provider, logger := glog.Resolve(serviceLoggerName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider == nil {
		provider = glog.ProviderFromLogger(logger)
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.now == nil {
		builder.now = time.Now
	}
	if builder.requestID == nil {
		builder.requestID = func() string { return "" }
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	credentials := finalConfig.Credentials()
	verifier := builder.envelopeVerifier
	if verifier == nil {
		verifier = NewHMACEnvelopeVerifier(credentials.Secret())
	}
	tokens := NewTokenExchangeClient(credentials, finalConfig.GraphHost, builder.transport, finalConfig.RequestDefaults())

	service := &Service{
		config:          finalConfig,
		credentials:     credentials,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		transport:       builder.transport,
		verifier:        verifier,
		urls:            NewAuthorizationURLBuilder(credentials, finalConfig.GraphHost, finalConfig.DialogHost),
		tokens:          tokens,
		resolver:        NewCookieSessionResolver(credentials, verifier, tokens, builder.now),
		now:             builder.now,
		requestID:       builder.requestID,
	}

	if builder.appTokenCache != nil {
		cached, cacheErr := NewCachedAppTokenSource(
			tokens,
			builder.appTokenCache,
			credentials.AppID(),
			finalConfig.AppTokenCacheKeyPrefix,
		)
		if cacheErr != nil {
			return nil, mapBuildError(builder.errorMapper, cacheErr)
		}
		service.appTokens = cached
	}
	return service, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Credentials() AppCredentials {
	if s == nil {
		return AppCredentials{}
	}
	return s.credentials
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:          s.logger,
		LoggerProvider:  s.loggerProvider,
		MetricsRecorder: s.metricsRecorder,
		ErrorFactory:    s.errorFactory,
		ErrorMapper:     s.errorMapper,
		ConfigProvider:  s.configProvider,
		OptionsResolver: s.optionsResolver,
		Transport:       s.transport,
		Verifier:        s.verifier,
	}
}

func (s *Service) AuthorizeURL(ctx context.Context, opts URLOptions) (out string, err error) {
	startedAt := time.Now().UTC()
	fields := s.operationFields(nil)
	defer func() {
		s.observeOperation(ctx, startedAt, opAuthorizeURL, err, fields)
	}()

	out, err = s.urls.AuthorizeURL(opts)
	if err != nil {
		err = s.mapError(err)
		return "", err
	}
	return out, nil
}

func (s *Service) DialogURL(ctx context.Context, dialogType string, opts URLOptions) (out string, err error) {
	startedAt := time.Now().UTC()
	fields := s.operationFields(map[string]any{"dialog_type": dialogType})
	defer func() {
		s.observeOperation(ctx, startedAt, opDialogURL, err, fields)
	}()

	if strings.TrimSpace(dialogType) == "" {
		err = s.mapError(fmt.Errorf("core: dialog type is required"))
		return "", err
	}
	out, err = s.urls.DialogURL(dialogType, opts)
	if err != nil {
		err = s.mapError(err)
		return "", err
	}
	return out, nil
}

// TokenURL builds the access token URL for code. The URL carries the app
// secret; it is never logged.
func (s *Service) TokenURL(ctx context.Context, code string, opts URLOptions) (out string, err error) {
	startedAt := time.Now().UTC()
	fields := s.operationFields(nil)
	defer func() {
		s.observeOperation(ctx, startedAt, opTokenURL, err, fields)
	}()

	out, err = s.urls.TokenURL(code, opts)
	if err != nil {
		err = s.mapError(err)
		return "", err
	}
	return out, nil
}

func (s *Service) VerifyEnvelope(ctx context.Context, token string) (envelope SignedEnvelope, err error) {
	startedAt := time.Now().UTC()
	fields := s.operationFields(nil)
	defer func() {
		if envelope.UserID != "" {
			fields["user_id"] = envelope.UserID
		}
		s.observeOperation(ctx, startedAt, opVerifyEnvelope, err, fields)
	}()

	envelope, err = s.verifier.Verify(token)
	if err != nil {
		err = s.mapError(err)
		return SignedEnvelope{}, err
	}
	return envelope, nil
}

// ParseLegacyCookie validates a raw fbs_ cookie value against the service
// clock. Rejection is not an error.
func (s *Service) ParseLegacyCookie(ctx context.Context, raw string) (SessionInfo, bool) {
	startedAt := time.Now().UTC()
	session, found := ParseLegacyCookie(raw, s.credentials.Secret(), s.now())
	fields := s.operationFields(map[string]any{"found": found})
	if found {
		fields["user_id"] = session.ID()
	}
	s.observeOperation(ctx, startedAt, opParseLegacyCookie, nil, fields)
	return session, found
}

func (s *Service) ResolveSession(ctx context.Context, cookies map[string]string) (session SessionInfo, found bool, err error) {
	startedAt := time.Now().UTC()
	fields := s.operationFields(nil)
	defer func() {
		fields["found"] = found
		if found {
			fields["source"] = string(session.Source)
			fields["user_id"] = session.ID()
		}
		s.observeOperation(ctx, startedAt, opResolveSession, err, fields)
	}()

	session, found, err = s.resolver.ResolveSession(ctx, cookies)
	if err != nil {
		err = s.mapError(err)
		return SessionInfo{}, false, err
	}
	return session, found, nil
}

func (s *Service) UserIDFromCookies(ctx context.Context, cookies map[string]string) (string, bool, error) {
	session, found, err := s.ResolveSession(ctx, cookies)
	if err != nil || !found {
		return "", false, err
	}
	id := session.ID()
	return id, id != "", nil
}

func (s *Service) ExchangeCode(
	ctx context.Context,
	code string,
	redirectURI string,
	opts TokenRequestOptions,
) (info AccessTokenInfo, err error) {
	startedAt := time.Now().UTC()
	fields := s.operationFields(nil)
	defer func() {
		s.observeOperation(ctx, startedAt, opExchangeCode, err, fields)
	}()

	if strings.TrimSpace(code) == "" {
		err = s.mapError(fmt.Errorf("core: authorization code is required"))
		return AccessTokenInfo{}, err
	}
	info, err = s.tokens.ExchangeCode(ctx, code, redirectURI, opts)
	if err != nil {
		err = s.mapError(err)
		return AccessTokenInfo{}, err
	}
	return info, nil
}

// ExchangeCodeDefault exchanges code using the configured callback URL as
// the redirect URI.
func (s *Service) ExchangeCodeDefault(ctx context.Context, code string, opts TokenRequestOptions) (AccessTokenInfo, error) {
	return s.ExchangeCode(ctx, code, s.credentials.CallbackURL(), opts)
}

// AppToken requests an application token, served from the app token cache
// when one is configured.
func (s *Service) AppToken(ctx context.Context, opts TokenRequestOptions) (info AccessTokenInfo, err error) {
	startedAt := time.Now().UTC()
	fields := s.operationFields(map[string]any{"cached": s.appTokens != nil})
	defer func() {
		s.observeOperation(ctx, startedAt, opAppToken, err, fields)
	}()

	var source AppTokenSource = s.tokens
	if s.appTokens != nil {
		source = s.appTokens
	}
	info, err = source.AppToken(ctx, opts)
	if err != nil {
		err = s.mapError(err)
		return AccessTokenInfo{}, err
	}
	return info, nil
}

// InvalidateAppToken drops the cached app token. It is a no-op when no cache
// is configured.
func (s *Service) InvalidateAppToken(ctx context.Context) (err error) {
	startedAt := time.Now().UTC()
	fields := s.operationFields(nil)
	defer func() {
		s.observeOperation(ctx, startedAt, opInvalidateAppToken, err, fields)
	}()

	if s.appTokens == nil {
		return nil
	}
	if err = s.appTokens.Invalidate(ctx); err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

func (s *Service) ExchangeSessionKeys(
	ctx context.Context,
	sessions []string,
	opts TokenRequestOptions,
) (tokens []*AccessTokenInfo, err error) {
	startedAt := time.Now().UTC()
	fields := s.operationFields(map[string]any{"session_count": len(sessions)})
	defer func() {
		if err == nil {
			fields["resolved_count"] = countResolved(tokens)
		}
		s.observeOperation(ctx, startedAt, opExchangeSessionKeys, err, fields)
	}()

	if len(sessions) == 0 {
		err = s.mapError(fmt.Errorf("core: at least one session key is required"))
		return nil, err
	}
	tokens, err = s.tokens.ExchangeSessionKeys(ctx, sessions, opts)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	return tokens, nil
}

func (s *Service) ExchangeSessionKey(ctx context.Context, session string, opts TokenRequestOptions) (*AccessTokenInfo, error) {
	tokens, err := s.ExchangeSessionKeys(ctx, []string{session}, opts)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	return tokens[0], nil
}

func (s *Service) operationFields(extra map[string]any) map[string]any {
	fields := cloneFields(extra)
	if s == nil {
		return fields
	}
	fields["app_id"] = s.credentials.AppID()
	if s.requestID != nil {
		if id := s.requestID(); id != "" {
			fields["request_id"] = id
		}
	}
	return fields
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func countResolved(tokens []*AccessTokenInfo) int {
	count := 0
	for _, token := range tokens {
		if token != nil {
			count++
		}
	}
	return count
}
