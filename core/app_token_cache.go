package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

// AppTokenSource issues application access tokens.
type AppTokenSource interface {
	AppToken(ctx context.Context, opts TokenRequestOptions) (AccessTokenInfo, error)
}

// CachedAppTokenSource memoises app tokens per application id. Fetch
// failures propagate to the caller.
type CachedAppTokenSource struct {
	base      AppTokenSource
	cache     repositorycache.CacheService
	appID     string
	keyPrefix string
}

func NewCachedAppTokenSource(
	base AppTokenSource,
	cacheService repositorycache.CacheService,
	appID string,
	keyPrefix string,
) (*CachedAppTokenSource, error) {
	if base == nil {
		return nil, fmt.Errorf("core: base app token source is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("core: app token cache service is required")
	}
	if strings.TrimSpace(appID) == "" {
		return nil, fmt.Errorf("core: app_id is required for app token cache")
	}
	if strings.TrimSpace(keyPrefix) == "" {
		keyPrefix = defaultAppTokenKeyPrefix
	}
	return &CachedAppTokenSource{
		base:      base,
		cache:     cacheService,
		appID:     strings.TrimSpace(appID),
		keyPrefix: strings.TrimSpace(keyPrefix),
	}, nil
}

// AppTokenCacheKey returns prefix::<app_id> with the id URL-path escaped.
func AppTokenCacheKey(prefix string, appID string) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultAppTokenKeyPrefix
	}
	return strings.TrimSpace(prefix) + "::" + url.PathEscape(strings.TrimSpace(appID))
}

// AppToken returns the cached token or fetches one. Request options only
// apply to the fetch that populates the entry.
func (s *CachedAppTokenSource) AppToken(ctx context.Context, opts TokenRequestOptions) (AccessTokenInfo, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return AccessTokenInfo{}, fmt.Errorf("core: cached app token source is not configured")
	}
	key := AppTokenCacheKey(s.keyPrefix, s.appID)
	info, err := repositorycache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) (AccessTokenInfo, error) {
		fetched, fetchErr := s.base.AppToken(ctx, opts)
		if fetchErr != nil {
			return AccessTokenInfo{}, fetchErr
		}
		return cloneAccessTokenInfo(fetched), nil
	})
	if err != nil {
		return AccessTokenInfo{}, err
	}
	return cloneAccessTokenInfo(info), nil
}

// Invalidate drops the cached token so the next call fetches a new one.
func (s *CachedAppTokenSource) Invalidate(ctx context.Context) error {
	if s == nil || s.cache == nil {
		return fmt.Errorf("core: cached app token source is not configured")
	}
	return s.cache.Delete(ctx, AppTokenCacheKey(s.keyPrefix, s.appID))
}

func cloneAccessTokenInfo(info AccessTokenInfo) AccessTokenInfo {
	cloned := info
	cloned.Fields = cloneStringMap(info.Fields)
	return cloned
}

var _ AppTokenSource = (*CachedAppTokenSource)(nil)
