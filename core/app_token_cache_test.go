package core

import (
	"context"
	"errors"
	"testing"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type countingAppTokenSource struct {
	calls int
	err   error
}

func (s *countingAppTokenSource) AppToken(context.Context, TokenRequestOptions) (AccessTokenInfo, error) {
	s.calls++
	if s.err != nil {
		return AccessTokenInfo{}, s.err
	}
	return newAccessTokenInfo(map[string]string{"access_token": "app_1|token"}), nil
}

func newTestAppTokenCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}

func TestCachedAppTokenSource_ServesFromCacheUntilInvalidated(t *testing.T) {
	base := &countingAppTokenSource{}
	source, err := NewCachedAppTokenSource(base, newTestAppTokenCacheService(t), "app_cache_1", "")
	if err != nil {
		t.Fatalf("new cached source: %v", err)
	}

	first, err := source.AppToken(context.Background(), TokenRequestOptions{})
	if err != nil {
		t.Fatalf("first app token: %v", err)
	}
	first.Fields["access_token"] = "mutated"

	second, err := source.AppToken(context.Background(), TokenRequestOptions{})
	if err != nil {
		t.Fatalf("second app token: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected one base fetch, got %d", base.calls)
	}
	if second.AccessToken != "app_1|token" || second.Fields["access_token"] != "app_1|token" {
		t.Fatalf("expected cached value isolated from caller mutation, got %#v", second)
	}

	if err := source.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := source.AppToken(context.Background(), TokenRequestOptions{}); err != nil {
		t.Fatalf("app token after invalidate: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected refetch after invalidate, got %d calls", base.calls)
	}
}

func TestCachedAppTokenSource_PropagatesBaseErrors(t *testing.T) {
	sentinel := newAPIError(map[string]any{"type": "OAuthException"})
	base := &countingAppTokenSource{err: sentinel}
	source, err := NewCachedAppTokenSource(base, newTestAppTokenCacheService(t), "app_cache_err", "")
	if err != nil {
		t.Fatalf("new cached source: %v", err)
	}
	_, err = source.AppToken(context.Background(), TokenRequestOptions{})
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("expected base error propagation, got %v", err)
	}
}

func TestNewCachedAppTokenSource_Validation(t *testing.T) {
	cacheService := newTestAppTokenCacheService(t)
	if _, err := NewCachedAppTokenSource(nil, cacheService, "app_1", ""); err == nil {
		t.Fatalf("expected missing base error")
	}
	if _, err := NewCachedAppTokenSource(&countingAppTokenSource{}, nil, "app_1", ""); err == nil {
		t.Fatalf("expected missing cache error")
	}
	if _, err := NewCachedAppTokenSource(&countingAppTokenSource{}, cacheService, " ", ""); err == nil {
		t.Fatalf("expected missing app id error")
	}
}

func TestAppTokenCacheKey_Contract(t *testing.T) {
	const expected = "graphauth::app_token::v1::app%2F1%20x"
	if key := AppTokenCacheKey("", " app/1 x "); key != expected {
		t.Fatalf("unexpected cache key: got %q want %q", key, expected)
	}
	if key := AppTokenCacheKey("custom", "app_1"); key != "custom::app_1" {
		t.Fatalf("unexpected prefixed cache key %q", key)
	}
}
