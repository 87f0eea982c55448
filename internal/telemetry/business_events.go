package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusinessEvents traces domain operations above the HTTP/DB level, e.g.
// "a feed was resolved" or "a follow edge flipped".
type BusinessEvents struct {
	tracer trace.Tracer
}

func NewBusinessEvents() *BusinessEvents {
	return &BusinessEvents{tracer: otel.Tracer("business-events")}
}

// TraceFeedResolve starts a span covering a full feed resolution for a viewer.
func (be *BusinessEvents) TraceFeedResolve(ctx context.Context, viewerID string, forceRefresh bool) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "feed.resolve",
		trace.WithAttributes(
			attribute.String("feed.viewer_id", viewerID),
			attribute.Bool("feed.force_refresh", forceRefresh),
		),
	)
}

// RecordFeedResolved annotates a feed span with its outcome.
func (be *BusinessEvents) RecordFeedResolved(span trace.Span, entryCount int, fromCache, stale bool) {
	span.SetAttributes(
		attribute.Int("feed.entry_count", entryCount),
		attribute.Bool("feed.from_cache", fromCache),
	)
	if stale {
		span.SetAttributes(attribute.Bool("feed.stale", true))
	}
}

// TraceFollowMutation starts a span for a follow edge write. edgeType is
// "user" or "story"; action is "follow" or "unfollow".
func (be *BusinessEvents) TraceFollowMutation(ctx context.Context, edgeType, action, actorID, targetID string) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "social.follow_mutation",
		trace.WithAttributes(
			attribute.String("follow.edge_type", edgeType),
			attribute.String("follow.action", action),
			attribute.String("follow.actor_id", actorID),
			attribute.String("follow.target_id", targetID),
		),
	)
}

// TraceRecordAppend starts a span for appending a record to a story timeline.
func (be *BusinessEvents) TraceRecordAppend(ctx context.Context, storyID string, mediaCount int) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "story.record_append",
		trace.WithAttributes(
			attribute.String("story.id", storyID),
			attribute.Int("record.media_count", mediaCount),
		),
	)
}

// EndWithError finishes a span, marking it failed when err is non-nil.
func EndWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
