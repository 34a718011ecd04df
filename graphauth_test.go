package graphauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	gocmd "github.com/goliatone/go-command"
	graphcommand "github.com/goliatone/go-graphauth/command"
	"github.com/goliatone/go-graphauth/core"
	graphquery "github.com/goliatone/go-graphauth/query"
	glog "github.com/goliatone/go-logger/glog"
)

type tokenEndpoint struct {
	mu     sync.Mutex
	server *httptest.Server
	paths  []string
	codes  []string
}

func newTokenEndpoint(t *testing.T) *tokenEndpoint {
	t.Helper()
	endpoint := &tokenEndpoint{}
	endpoint.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		endpoint.mu.Lock()
		endpoint.paths = append(endpoint.paths, r.URL.Path)
		endpoint.codes = append(endpoint.codes, r.Form.Get("code"))
		endpoint.mu.Unlock()

		switch {
		case r.Form.Get("code") == "rejected":
			_, _ = w.Write([]byte(`{"error":{"type":"OAuthException","message":"Invalid verification code format."}}`))
		case r.Form.Get("type") == "client_cred":
			_, _ = w.Write([]byte("access_token=app_1|secret_token"))
		default:
			_, _ = w.Write([]byte("access_token=user_token&expires=5183999"))
		}
	}))
	t.Cleanup(endpoint.server.Close)
	return endpoint
}

func (e *tokenEndpoint) host() string {
	return strings.TrimPrefix(e.server.URL, "http://")
}

func (e *tokenEndpoint) requests() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.paths)
}

func newEndToEndService(t *testing.T, endpoint *tokenEndpoint) *Service {
	t.Helper()
	cfg := DefaultConfig()
	cfg.AppID = "app_1"
	cfg.AppSecret = "appsecret"
	cfg.CallbackURL = "https://app.example/cb"
	cfg.GraphHost = endpoint.host()
	cfg.AllowInsecureHTTP = true
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewService_ExchangesCodeOverHTTP(t *testing.T) {
	endpoint := newTokenEndpoint(t)
	svc := newEndToEndService(t, endpoint)

	info, err := svc.ExchangeCodeDefault(context.Background(), "c0de", TokenRequestOptions{})
	if err != nil {
		t.Fatalf("exchange code: %v", err)
	}
	if info.AccessToken != "user_token" || info.Expires != "5183999" {
		t.Fatalf("unexpected token info %#v", info)
	}
	if endpoint.paths[0] != core.AccessTokenPath || endpoint.codes[0] != "c0de" {
		t.Fatalf("unexpected request path=%q code=%q", endpoint.paths[0], endpoint.codes[0])
	}

	_, err = svc.ExchangeCode(context.Background(), "rejected", "", TokenRequestOptions{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected remote api error, got %v", err)
	}
	if apiErr.Type != "OAuthException" {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
}

func TestFacade_ResolvesSignedCookieSession(t *testing.T) {
	endpoint := newTokenEndpoint(t)
	facade, err := NewFacade(newEndToEndService(t, endpoint))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	cookie := core.SignEnvelope([]byte(`{"algorithm":"HMAC-SHA256","code":"c0de","user_id":"42"}`), "appsecret")
	lookup, err := facade.Queries().ResolveSession.Query(context.Background(), graphquery.ResolveSessionMessage{
		Cookies: map[string]string{"fbsr_app_1": cookie},
	})
	if err != nil {
		t.Fatalf("resolve session: %v", err)
	}
	if !lookup.Found {
		t.Fatalf("expected session")
	}
	if lookup.Session.AccessToken != "user_token" || lookup.Session.ID() != "42" {
		t.Fatalf("unexpected session %#v", lookup.Session)
	}
	if endpoint.requests() != 1 {
		t.Fatalf("expected one code exchange, got %d", endpoint.requests())
	}
}

func TestFacade_CommandsStoreResults(t *testing.T) {
	endpoint := newTokenEndpoint(t)
	facade, err := NewFacade(newEndToEndService(t, endpoint))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	collector := gocmd.NewResult[core.AccessTokenInfo]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := facade.Commands().AppToken.Execute(ctx, graphcommand.AppTokenMessage{}); err != nil {
		t.Fatalf("app token: %v", err)
	}
	info, ok := collector.Load()
	if !ok || info.AccessToken != "app_1|secret_token" {
		t.Fatalf("unexpected app token result %#v (stored=%t)", info, ok)
	}

	url, err := facade.Queries().AuthorizeURL.Query(context.Background(), graphquery.AuthorizeURLMessage{
		Options: URLOptions{"permissions": []string{"email", "user_likes"}},
	})
	if err != nil {
		t.Fatalf("authorize url: %v", err)
	}
	if !strings.HasPrefix(url, "https://"+endpoint.host()+core.AuthorizePath+"?") {
		t.Fatalf("unexpected authorize url %q", url)
	}
	if !strings.Contains(url, "scope=email%2Cuser_likes") {
		t.Fatalf("expected comma-joined scope, got %q", url)
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatalf("expected error for nil service")
	}
	var facade *Facade
	if facade.Service() != nil || facade.Commands().AppToken != nil {
		t.Fatalf("expected zero values from nil facade")
	}
}

type recordingLogger struct {
	mu    *sync.Mutex
	lines *[]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, lines: &[]string{}}
}

func (l *recordingLogger) record(level string, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.lines = append(*l.lines, level+" "+msg+" "+fmt.Sprint(args...))
}

func (l *recordingLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *recordingLogger) WithContext(context.Context) glog.Logger { return l }

func (l *recordingLogger) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), (*l.lines)...)
}

func TestNewService_RefusedConnectionKeepsSecretOutOfLogsAndErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	host := strings.TrimPrefix(server.URL, "http://")
	server.Close()

	cfg := DefaultConfig()
	cfg.AppID = "app_1"
	cfg.AppSecret = "TOPSECRET123"
	cfg.CallbackURL = "https://app.example/cb"
	cfg.GraphHost = host
	cfg.AllowInsecureHTTP = true

	logger := newRecordingLogger()
	svc, err := NewService(cfg, WithLogger(logger))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.ExchangeCode(context.Background(), "c0de", "", TokenRequestOptions{})
	if err == nil {
		t.Fatalf("expected refused connection error")
	}
	if strings.Contains(err.Error(), "TOPSECRET123") {
		t.Fatalf("returned error leaked the app secret: %v", err)
	}

	lines := logger.snapshot()
	if len(lines) == 0 {
		t.Fatalf("expected the logger passed through WithLogger to receive records")
	}
	failureLogged := false
	for _, line := range lines {
		if strings.Contains(line, "TOPSECRET123") {
			t.Fatalf("log line leaked the app secret: %s", line)
		}
		if strings.Contains(line, "exchange_code failed") {
			failureLogged = true
		}
	}
	if !failureLogged {
		t.Fatalf("expected exchange_code failure log, got %v", lines)
	}
}
