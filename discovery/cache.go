package discovery

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is used when NewCachingFetcher is given a non-positive TTL.
const DefaultCacheTTL = 15 * time.Minute

// CachingFetcher remembers successful discoveries per issuer for a TTL.
// Concurrent misses for the same issuer share one network request.
// Failures are never cached. A caller whose context ends stops waiting
// without cancelling the request other callers share.
//
// Callers share the returned *ProviderMetadata and must not modify it.
type CachingFetcher struct {
	fetcher *Fetcher
	cache   *cache.Cache
	group   singleflight.Group
}

// NewCachingFetcher wraps fetcher with an in-memory cache.
func NewCachingFetcher(fetcher *Fetcher, ttl time.Duration) *CachingFetcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingFetcher{
		fetcher: fetcher,
		cache:   cache.New(ttl, 2*ttl),
	}
}

// Fetch returns cached metadata for the issuer or discovers it.
func (c *CachingFetcher) Fetch(ctx context.Context, issuerBaseURL string) (*ProviderMetadata, error) {
	key := cacheKey(issuerBaseURL)

	if cached, ok := c.cache.Get(key); ok {
		return cached.(*ProviderMetadata), nil
	}

	// The shared request outlives any single caller's cancellation; it is
	// bounded by the fetcher's HTTP client timeout instead.
	sharedCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key, func() (any, error) {
		// Another caller may have filled the entry while we waited.
		if cached, ok := c.cache.Get(key); ok {
			return cached, nil
		}

		metadata, err := c.fetcher.Fetch(sharedCtx, issuerBaseURL)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, metadata)
		c.reportSize()
		return metadata, nil
	})

	select {
	case <-ctx.Done():
		return nil, newUnreachableError(0, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ProviderMetadata), nil
	}
}

// Invalidate drops the cached entry for the issuer.
func (c *CachingFetcher) Invalidate(issuerBaseURL string) {
	c.cache.Delete(cacheKey(issuerBaseURL))
	c.reportSize()
}

func (c *CachingFetcher) reportSize() {
	if c.fetcher.metrics != nil {
		c.fetcher.metrics.SetGauge(MetricCachedIssuers, float64(c.cache.ItemCount()), nil)
	}
}

func cacheKey(issuer string) string {
	return strings.TrimRight(issuer, "/")
}
