package gocommand

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command"
	graphcommand "github.com/goliatone/go-graphauth/command"
	"github.com/goliatone/go-graphauth/core"
	graphquery "github.com/goliatone/go-graphauth/query"
)

type okMessage struct{}

func (okMessage) Type() string { return "graphauth.command.ok" }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type failingMessage struct{}

func (failingMessage) Type() string { return "graphauth.command.fail" }

func (failingMessage) Validate() error { return errors.New("invalid payload") }

type dispatchMessage struct {
	ID string
}

func (dispatchMessage) Type() string { return "graphauth.command.test" }

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(okMessage{}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(failingMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
	if err := ValidateMessageContract(graphcommand.ExchangeSessionKeysMessage{}); err == nil {
		t.Fatalf("expected empty session list to fail contract validation")
	}
}

func TestRegistryAndDispatchWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	executed := 0
	customResolverCalled := 0

	cmd := command.CommandFunc[dispatchMessage](func(context.Context, dispatchMessage) error {
		executed++
		return nil
	})

	subscription, err := RegisterAndSubscribe(adapter, cmd)
	if err != nil {
		t.Fatalf("register and subscribe: %v", err)
	}
	defer subscription.Unsubscribe()
	if err := adapter.AddResolver("custom", func(any, command.CommandMeta, *command.Registry) error {
		customResolverCalled++
		return nil
	}); err != nil {
		t.Fatalf("add resolver: %v", err)
	}
	if !adapter.HasResolver("custom") {
		t.Fatalf("expected custom resolver to be registered")
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}
	if customResolverCalled == 0 {
		t.Fatalf("expected resolver hook to run during initialization")
	}

	if err := Dispatch(context.Background(), dispatchMessage{ID: "m1"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if executed != 1 {
		t.Fatalf("expected command execution count=1, got %d", executed)
	}
}

func TestRegisterGraphAuthHandlers_DispatchesToService(t *testing.T) {
	svc := &stubGraphAuthService{
		authorizeURL: "https://graph.example.test/oauth/authorize?client_id=app_1",
	}
	adapter := NewRegistryAdapter(command.NewRegistry())
	subscriptions, err := RegisterGraphAuthHandlers(adapter, svc)
	if err != nil {
		t.Fatalf("register handlers: %v", err)
	}
	defer func() {
		for _, subscription := range subscriptions {
			subscription.Unsubscribe()
		}
	}()
	if len(subscriptions) != 11 {
		t.Fatalf("expected 11 subscriptions, got %d", len(subscriptions))
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	url, err := Query[graphquery.AuthorizeURLMessage, string](context.Background(), graphquery.AuthorizeURLMessage{
		Options: core.URLOptions{"scope": "email"},
	})
	if err != nil {
		t.Fatalf("query authorize url: %v", err)
	}
	if url != svc.authorizeURL {
		t.Fatalf("unexpected url %q", url)
	}

	if err := Dispatch(context.Background(), graphcommand.InvalidateAppTokenMessage{}); err != nil {
		t.Fatalf("dispatch invalidate: %v", err)
	}
	if svc.invalidated != 1 {
		t.Fatalf("expected one invalidation, got %d", svc.invalidated)
	}
}

func TestRegisterGraphAuthHandlers_RequiresService(t *testing.T) {
	if _, err := RegisterGraphAuthHandlers(NewRegistryAdapter(nil), nil); err == nil {
		t.Fatalf("expected missing service error")
	}
}

type stubGraphAuthService struct {
	authorizeURL string
	invalidated  int
}

func (s *stubGraphAuthService) ExchangeCode(context.Context, string, string, core.TokenRequestOptions) (core.AccessTokenInfo, error) {
	return core.AccessTokenInfo{}, nil
}

func (s *stubGraphAuthService) ExchangeCodeDefault(context.Context, string, core.TokenRequestOptions) (core.AccessTokenInfo, error) {
	return core.AccessTokenInfo{}, nil
}

func (s *stubGraphAuthService) AppToken(context.Context, core.TokenRequestOptions) (core.AccessTokenInfo, error) {
	return core.AccessTokenInfo{}, nil
}

func (s *stubGraphAuthService) InvalidateAppToken(context.Context) error {
	s.invalidated++
	return nil
}

func (s *stubGraphAuthService) ExchangeSessionKeys(context.Context, []string, core.TokenRequestOptions) ([]*core.AccessTokenInfo, error) {
	return nil, nil
}

func (s *stubGraphAuthService) ResolveSession(context.Context, map[string]string) (core.SessionInfo, bool, error) {
	return core.SessionInfo{}, false, nil
}

func (s *stubGraphAuthService) UserIDFromCookies(context.Context, map[string]string) (string, bool, error) {
	return "", false, nil
}

func (s *stubGraphAuthService) ParseLegacyCookie(context.Context, string) (core.SessionInfo, bool) {
	return core.SessionInfo{}, false
}

func (s *stubGraphAuthService) VerifyEnvelope(context.Context, string) (core.SignedEnvelope, error) {
	return core.SignedEnvelope{}, nil
}

func (s *stubGraphAuthService) AuthorizeURL(context.Context, core.URLOptions) (string, error) {
	return s.authorizeURL, nil
}

func (s *stubGraphAuthService) DialogURL(context.Context, string, core.URLOptions) (string, error) {
	return "", nil
}

func (s *stubGraphAuthService) TokenURL(context.Context, string, core.URLOptions) (string, error) {
	return "", nil
}
