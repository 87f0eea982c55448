package feed

import (
	"context"

	"github.com/connectos/backend/internal/metrics"
)

// Service ties the resolver and cache together. GetFeed is the single entry
// point handlers use; everything below it is read-only.
type Service struct {
	resolver *Resolver
	cache    *Cache
}

func NewService(resolver *Resolver, cache *Cache) *Service {
	return &Service{resolver: resolver, cache: cache}
}

// Result carries a resolved feed plus whether it came from an expired cache
// entry after a failed refresh.
type Result struct {
	Entries []Entry
	Stale   bool
}

// GetFeed returns the viewer's feed, consulting the cache unless
// forceRefresh is set. A failed resolve falls back to the last good cached
// feed when one exists; the error is still returned alongside it so callers
// can tell the viewer the data may be out of date.
func (s *Service) GetFeed(ctx context.Context, viewerID string, forceRefresh bool) (Result, error) {
	if forceRefresh {
		s.cache.Invalidate(viewerID)
	} else if entries, ok := s.cache.Get(viewerID); ok {
		metrics.Get().FeedResolvesTotal.WithLabelValues("cache", "ok").Inc()
		return Result{Entries: entries}, nil
	}

	entries, err := s.resolver.Resolve(ctx, viewerID)
	if err != nil {
		if stale, ok := s.cache.GetStale(viewerID); ok {
			return Result{Entries: stale, Stale: true}, err
		}
		return Result{}, err
	}

	s.cache.Put(viewerID, entries)
	return Result{Entries: entries}, nil
}

// Refresh invalidates and immediately re-resolves the viewer's feed.
func (s *Service) Refresh(ctx context.Context, viewerID string) (Result, error) {
	return s.GetFeed(ctx, viewerID, true)
}

// InvalidateFor drops the viewer's cached feed. Follow mutations call this
// so the next fetch reflects the new membership.
func (s *Service) InvalidateFor(viewerID string) {
	s.cache.Invalidate(viewerID)
}
