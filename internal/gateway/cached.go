package gateway

import (
	"context"
	"time"

	"github.com/karlseguin/ccache/v3"

	"staygrip/internal/domain"
	"staygrip/internal/logging"
	"staygrip/internal/searchstate"
)

// CachedGateway keeps recent result pages in memory, keyed by the structural
// parameter key, so walking back and forth through history stays local.
// ccache keys are always strings; the type parameter is the value.
type CachedGateway struct {
	next   Searcher
	cache  *ccache.Cache[domain.ResultPage]
	ttl    time.Duration
	logger logging.Logger
}

// NewCachedGateway wraps next. maxSize bounds the number of cached pages.
func NewCachedGateway(next Searcher, ttl time.Duration, maxSize int64, logger logging.Logger) *CachedGateway {
	if logger == nil {
		logger = logging.Nop()
	}
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &CachedGateway{
		next:   next,
		cache:  ccache.New(ccache.Configure[domain.ResultPage]().MaxSize(maxSize)),
		ttl:    ttl,
		logger: logger.WithFields(logging.Fields{"component": "gateway_cache"}),
	}
}

func (c *CachedGateway) Search(ctx context.Context, params searchstate.SearchParams) (domain.ResultPage, error) {
	key := params.Key()

	if item := c.cache.Get(key); item != nil && !item.Expired() {
		c.logger.Debug("cache hit", logging.Fields{"key": key})
		return item.Value(), nil
	}

	page, err := c.next.Search(ctx, params)
	if err != nil {
		return domain.ResultPage{}, err
	}

	c.cache.Set(key, page, c.ttl)
	c.logger.Debug("cache miss, stored", logging.Fields{"key": key, "count": len(page.Properties)})
	return page, nil
}

// Invalidate drops every cached page
func (c *CachedGateway) Invalidate() {
	c.cache.Clear()
}

// Stop releases the cache's background worker
func (c *CachedGateway) Stop() {
	c.cache.Stop()
}
