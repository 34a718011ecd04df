package command

import (
	"context"
	"errors"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-graphauth/core"
)

type stubTokenService struct {
	exchangeFn        func(ctx context.Context, code string, redirectURI string, opts core.TokenRequestOptions) (core.AccessTokenInfo, error)
	exchangeDefaultFn func(ctx context.Context, code string, opts core.TokenRequestOptions) (core.AccessTokenInfo, error)
	appTokenFn        func(ctx context.Context, opts core.TokenRequestOptions) (core.AccessTokenInfo, error)
	invalidateFn      func(ctx context.Context) error
	sessionsFn        func(ctx context.Context, sessions []string, opts core.TokenRequestOptions) ([]*core.AccessTokenInfo, error)
}

func (s stubTokenService) ExchangeCode(ctx context.Context, code string, redirectURI string, opts core.TokenRequestOptions) (core.AccessTokenInfo, error) {
	if s.exchangeFn == nil {
		return core.AccessTokenInfo{}, nil
	}
	return s.exchangeFn(ctx, code, redirectURI, opts)
}

func (s stubTokenService) ExchangeCodeDefault(ctx context.Context, code string, opts core.TokenRequestOptions) (core.AccessTokenInfo, error) {
	if s.exchangeDefaultFn == nil {
		return core.AccessTokenInfo{}, nil
	}
	return s.exchangeDefaultFn(ctx, code, opts)
}

func (s stubTokenService) AppToken(ctx context.Context, opts core.TokenRequestOptions) (core.AccessTokenInfo, error) {
	if s.appTokenFn == nil {
		return core.AccessTokenInfo{}, nil
	}
	return s.appTokenFn(ctx, opts)
}

func (s stubTokenService) InvalidateAppToken(ctx context.Context) error {
	if s.invalidateFn == nil {
		return nil
	}
	return s.invalidateFn(ctx)
}

func (s stubTokenService) ExchangeSessionKeys(ctx context.Context, sessions []string, opts core.TokenRequestOptions) ([]*core.AccessTokenInfo, error) {
	if s.sessionsFn == nil {
		return nil, nil
	}
	return s.sessionsFn(ctx, sessions, opts)
}

func TestExchangeCodeCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	called := false
	svc := stubTokenService{
		exchangeFn: func(_ context.Context, code string, redirectURI string, opts core.TokenRequestOptions) (core.AccessTokenInfo, error) {
			called = true
			if code != "c0de" || redirectURI != "https://app.example/cb" {
				t.Fatalf("unexpected exchange payload: %q %q", code, redirectURI)
			}
			if opts.Params["extra"] != "1" {
				t.Fatalf("expected options to pass through, got %v", opts.Params)
			}
			return core.AccessTokenInfo{AccessToken: "tok"}, nil
		},
	}

	cmd := NewExchangeCodeCommand(svc)
	collector := gocmd.NewResult[core.AccessTokenInfo]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, ExchangeCodeMessage{
		Code:        "c0de",
		RedirectURI: "https://app.example/cb",
		Options:     core.TokenRequestOptions{Params: map[string]string{"extra": "1"}},
	})
	if err != nil {
		t.Fatalf("execute exchange code: %v", err)
	}
	if !called {
		t.Fatalf("expected exchange service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.AccessToken != "tok" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestExchangeCodeCommand_UseCallbackURL(t *testing.T) {
	called := false
	svc := stubTokenService{
		exchangeFn: func(context.Context, string, string, core.TokenRequestOptions) (core.AccessTokenInfo, error) {
			t.Fatalf("expected default exchange to be used")
			return core.AccessTokenInfo{}, nil
		},
		exchangeDefaultFn: func(_ context.Context, code string, _ core.TokenRequestOptions) (core.AccessTokenInfo, error) {
			called = code == "c0de"
			return core.AccessTokenInfo{}, nil
		},
	}
	if err := NewExchangeCodeCommand(svc).Execute(context.Background(), ExchangeCodeMessage{Code: "c0de", UseCallbackURL: true}); err != nil {
		t.Fatalf("execute exchange code: %v", err)
	}
	if !called {
		t.Fatalf("expected default exchange invocation")
	}
}

func TestTokenCommands_DelegateToService(t *testing.T) {
	t.Run("app token", func(t *testing.T) {
		svc := stubTokenService{
			appTokenFn: func(context.Context, core.TokenRequestOptions) (core.AccessTokenInfo, error) {
				return core.AccessTokenInfo{AccessToken: "app_1|token"}, nil
			},
		}
		collector := gocmd.NewResult[core.AccessTokenInfo]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := NewAppTokenCommand(svc).Execute(ctx, AppTokenMessage{}); err != nil {
			t.Fatalf("execute app token: %v", err)
		}
		stored, ok := collector.Load()
		if !ok || stored.AccessToken != "app_1|token" {
			t.Fatalf("unexpected stored app token: %#v", stored)
		}
	})

	t.Run("invalidate", func(t *testing.T) {
		calls := 0
		svc := stubTokenService{
			invalidateFn: func(context.Context) error {
				calls++
				return nil
			},
		}
		if err := NewInvalidateAppTokenCommand(svc).Execute(context.Background(), InvalidateAppTokenMessage{}); err != nil {
			t.Fatalf("execute invalidate: %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected one invalidation, got %d", calls)
		}
	})

	t.Run("session keys", func(t *testing.T) {
		svc := stubTokenService{
			sessionsFn: func(_ context.Context, sessions []string, _ core.TokenRequestOptions) ([]*core.AccessTokenInfo, error) {
				if len(sessions) != 2 {
					t.Fatalf("unexpected sessions %v", sessions)
				}
				return []*core.AccessTokenInfo{{AccessToken: "A"}, nil}, nil
			},
		}
		collector := gocmd.NewResult[[]*core.AccessTokenInfo]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := NewExchangeSessionKeysCommand(svc).Execute(ctx, ExchangeSessionKeysMessage{Sessions: []string{"s1", "s2"}}); err != nil {
			t.Fatalf("execute session keys: %v", err)
		}
		stored, ok := collector.Load()
		if !ok || len(stored) != 2 || stored[0].AccessToken != "A" || stored[1] != nil {
			t.Fatalf("unexpected stored tokens: %#v", stored)
		}
	})
}

func TestTokenCommands_PropagateServiceErrors(t *testing.T) {
	sentinel := errors.New("remote down")
	svc := stubTokenService{
		appTokenFn: func(context.Context, core.TokenRequestOptions) (core.AccessTokenInfo, error) {
			return core.AccessTokenInfo{}, sentinel
		},
	}
	collector := gocmd.NewResult[core.AccessTokenInfo]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := NewAppTokenCommand(svc).Execute(ctx, AppTokenMessage{}); !errors.Is(err, sentinel) {
		t.Fatalf("expected service error, got %v", err)
	}
	if _, ok := collector.Load(); ok {
		t.Fatalf("expected no stored result on failure")
	}
}
