package feed

import (
	"context"
	"time"

	apperrors "github.com/connectos/backend/internal/errors"
	"github.com/connectos/backend/internal/logger"
	"github.com/connectos/backend/internal/metrics"
	"github.com/connectos/backend/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultResolveTimeout bounds a full feed resolution. A hung store call
// fails the resolve instead of hanging the request.
const DefaultResolveTimeout = 10 * time.Second

// Resolver produces the complete entry list a viewer is entitled to see.
// It is read-only; follow state is never mutated here.
type Resolver struct {
	follows      repository.FollowRepository
	storyFollows repository.StoryFollowRepository
	stories      repository.StoryRepository
	timeout      time.Duration
	clock        Clock
}

func NewResolver(follows repository.FollowRepository, storyFollows repository.StoryFollowRepository, stories repository.StoryRepository) *Resolver {
	return &Resolver{
		follows:      follows,
		storyFollows: storyFollows,
		stories:      stories,
		timeout:      DefaultResolveTimeout,
		clock:        time.Now,
	}
}

// WithTimeout overrides the per-resolve deadline.
func (r *Resolver) WithTimeout(d time.Duration) *Resolver {
	r.timeout = d
	return r
}

// WithClock overrides the clock used for humanized timestamps.
func (r *Resolver) WithClock(clock Clock) *Resolver {
	r.clock = clock
	return r
}

// Resolve builds the viewer's feed entries from storage. Results are
// all-or-nothing: any failed lookup fails the whole resolve.
func (r *Resolver) Resolve(ctx context.Context, viewerID string) ([]Entry, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Follow edges first; both lists gate the candidate query.
	var followedUsers, followedStories []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		followedUsers, err = r.follows.ListFollowingIDs(gctx, viewerID)
		return err
	})
	g.Go(func() error {
		var err error
		followedStories, err = r.storyFollows.ListFollowedStoryIDs(gctx, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, r.fail(viewerID, "resolve follow edges", err)
	}

	candidates, err := r.stories.ListFeedCandidates(ctx, viewerID, followedUsers, followedStories)
	if err != nil {
		return nil, r.fail(viewerID, "load candidate stories", err)
	}

	ownerIDs := make([]string, 0, len(candidates))
	storyIDs := make([]string, 0, len(candidates))
	seenOwner := make(map[string]bool, len(candidates))
	for _, s := range candidates {
		storyIDs = append(storyIDs, s.ID)
		if !seenOwner[s.UserID] {
			seenOwner[s.UserID] = true
			ownerIDs = append(ownerIDs, s.UserID)
		}
	}

	// Enrichment fan-out: one batched query per concern.
	var profiles map[string]repository.Profile
	var counts map[string]int64
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = r.stories.ProfilesByID(gctx, ownerIDs)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = r.stories.RecordCounts(gctx, storyIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, r.fail(viewerID, "enrich feed entries", err)
	}

	now := r.clock()
	entries := make([]Entry, 0, len(candidates))
	for _, s := range candidates {
		entries = append(entries, buildEntry(s, viewerID, profiles, counts, now))
	}

	m := metrics.Get()
	m.FeedResolveDuration.WithLabelValues("store").Observe(time.Since(start).Seconds())
	m.FeedResolvesTotal.WithLabelValues("store", "ok").Inc()
	m.FeedCandidatesLoaded.WithLabelValues("store").Observe(float64(len(entries)))
	return entries, nil
}

func (r *Resolver) fail(viewerID, stage string, err error) error {
	metrics.Get().FeedResolvesTotal.WithLabelValues("store", "error").Inc()
	logger.Log.Warn("feed resolve failed",
		zap.String("viewer_id", viewerID),
		zap.String("stage", stage),
		zap.Error(err))
	return apperrors.FeedFetchFailed(err)
}
