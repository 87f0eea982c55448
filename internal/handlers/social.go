package handlers

import (
	"net/http"

	"github.com/connectos/backend/internal/database"
	apperrors "github.com/connectos/backend/internal/errors"
	"github.com/connectos/backend/internal/metrics"
	"github.com/connectos/backend/internal/models"
	"github.com/connectos/backend/internal/telemetry"
	"github.com/connectos/backend/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FollowUser makes the actor follow the target user. Safe to repeat.
// PUT /api/v1/users/:id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	h.setUserFollow(c, true)
}

// UnfollowUser removes the actor's follow of the target user. Safe to repeat.
// DELETE /api/v1/users/:id/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	h.setUserFollow(c, false)
}

// ToggleFollow flips the actor's follow of the target user and reports the
// resulting state.
// POST /api/v1/users/:id/follow/toggle
func (h *Handlers) ToggleFollow(c *gin.Context) {
	actorID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	targetID := c.Param("id")

	following, err := h.follows.Exists(c.Request.Context(), actorID, targetID)
	if err != nil {
		util.RespondWithAPIError(c, apperrors.EdgeWriteFailed(err))
		return
	}
	h.applyUserFollow(c, actorID, targetID, !following)
}

func (h *Handlers) setUserFollow(c *gin.Context, desired bool) {
	actorID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	h.applyUserFollow(c, actorID, c.Param("id"), desired)
}

func (h *Handlers) applyUserFollow(c *gin.Context, actorID, targetID string, desired bool) {
	if targetID == actorID {
		util.RespondWithAPIError(c, apperrors.InvalidTarget("you cannot follow yourself"))
		return
	}

	var target models.User
	if err := database.DB.First(&target, "id = ?", targetID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	action := "follow"
	if !desired {
		action = "unfollow"
	}
	ctx, span := h.events.TraceFollowMutation(c.Request.Context(), "user", action, actorID, targetID)

	changed, err := h.follows.Set(ctx, actorID, targetID, desired)
	telemetry.EndWithError(span, err)
	if err != nil {
		metrics.Get().FollowMutationsTotal.WithLabelValues("user", action, "error").Inc()
		util.RespondWithAPIError(c, apperrors.EdgeWriteFailed(err))
		return
	}
	metrics.Get().FollowMutationsTotal.WithLabelValues("user", action, "ok").Inc()

	if changed {
		h.applyFollowSideEffects(actorID, targetID, desired)
	}

	c.JSON(http.StatusOK, gin.H{
		"following": desired,
		"changed":   changed,
	})
}

// applyFollowSideEffects maintains the cached counters, notifies the target
// and drops the actor's cached feed. Counter drift here is tolerable; the
// edge row is the source of truth.
func (h *Handlers) applyFollowSideEffects(actorID, targetID string, followed bool) {
	delta := 1
	if !followed {
		delta = -1
	}
	database.DB.Model(&models.User{}).Where("id = ?", actorID).
		UpdateColumn("following_count", gorm.Expr("following_count + ?", delta))
	database.DB.Model(&models.User{}).Where("id = ?", targetID).
		UpdateColumn("follower_count", gorm.Expr("follower_count + ?", delta))

	if followed {
		database.DB.Create(&models.Notification{
			UserID:  targetID,
			ActorID: actorID,
			Kind:    models.NotificationFollow,
		})
	}

	h.feed.InvalidateFor(actorID)
}

// FollowStory makes the actor follow the target story directly.
// PUT /api/v1/stories/:id/follow
func (h *Handlers) FollowStory(c *gin.Context) {
	h.setStoryFollow(c, true)
}

// UnfollowStory removes the actor's direct follow of the story.
// DELETE /api/v1/stories/:id/follow
func (h *Handlers) UnfollowStory(c *gin.Context) {
	h.setStoryFollow(c, false)
}

// ToggleStoryFollow flips the actor's direct follow of the story.
// POST /api/v1/stories/:id/follow/toggle
func (h *Handlers) ToggleStoryFollow(c *gin.Context) {
	actorID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	storyID := c.Param("id")

	following, err := h.storyFollows.Exists(c.Request.Context(), actorID, storyID)
	if err != nil {
		util.RespondWithAPIError(c, apperrors.EdgeWriteFailed(err))
		return
	}
	h.applyStoryFollow(c, actorID, storyID, !following)
}

func (h *Handlers) setStoryFollow(c *gin.Context, desired bool) {
	actorID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	h.applyStoryFollow(c, actorID, c.Param("id"), desired)
}

func (h *Handlers) applyStoryFollow(c *gin.Context, actorID, storyID string, desired bool) {
	story, err := h.stories.GetByID(c.Request.Context(), storyID)
	if err != nil {
		util.RespondNotFound(c, "story")
		return
	}
	if story.UserID == actorID {
		util.RespondWithAPIError(c, apperrors.InvalidTarget("you cannot follow your own story"))
		return
	}

	action := "follow"
	if !desired {
		action = "unfollow"
	}
	ctx, span := h.events.TraceFollowMutation(c.Request.Context(), "story", action, actorID, storyID)

	changed, err := h.storyFollows.Set(ctx, actorID, storyID, desired)
	telemetry.EndWithError(span, err)
	if err != nil {
		metrics.Get().FollowMutationsTotal.WithLabelValues("story", action, "error").Inc()
		util.RespondWithAPIError(c, apperrors.EdgeWriteFailed(err))
		return
	}
	metrics.Get().FollowMutationsTotal.WithLabelValues("story", action, "ok").Inc()

	if changed {
		if desired {
			database.DB.Create(&models.Notification{
				UserID:  story.UserID,
				ActorID: actorID,
				Kind:    models.NotificationStoryFollow,
				StoryID: &story.ID,
			})
		}
		h.feed.InvalidateFor(actorID)
	}

	c.JSON(http.StatusOK, gin.H{
		"following": desired,
		"changed":   changed,
	})
}
