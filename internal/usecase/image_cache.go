package usecase

import (
	"context"
	"time"

	"maison-core/internal/domain/repository"

	"go.uber.org/zap"
)

// CachedImageSearcher answers repeated dish lookups from cache. Cache
// failures fall through to the underlying searcher.
type CachedImageSearcher struct {
	next   repository.ImageSearcher
	cache  repository.ImageCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedImageSearcher(next repository.ImageSearcher, cache repository.ImageCache, ttl time.Duration, logger *zap.Logger) *CachedImageSearcher {
	return &CachedImageSearcher{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedImageSearcher) SearchImages(ctx context.Context, query string) ([]string, error) {
	urls, ok, err := c.cache.Get(ctx, query)
	if err != nil {
		c.logger.Debug("[IMAGE-CACHE] read failed", zap.String("dish", query), zap.Error(err))
	} else if ok && len(urls) > 0 {
		return urls, nil
	}

	urls, err = c.next.SearchImages(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(urls) > 0 {
		if err := c.cache.Set(ctx, query, urls, c.ttl); err != nil {
			c.logger.Debug("[IMAGE-CACHE] write failed", zap.String("dish", query), zap.Error(err))
		}
	}
	return urls, nil
}
