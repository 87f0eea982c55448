package handlers

import (
	"net/http"
	"time"

	"github.com/connectos/backend/internal/database"
	"github.com/connectos/backend/internal/models"
	"github.com/connectos/backend/internal/telemetry"
	"github.com/connectos/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// AppendRecordRequest is the payload for adding a record to a story timeline
type AppendRecordRequest struct {
	Title       string           `json:"title" binding:"required,min=1,max=200"`
	Description *string          `json:"description"`
	IsPublic    *bool            `json:"is_public"`
	Location    *models.Location `json:"location"`
	Media       models.MediaRefs `json:"media"`
	OccurredAt  *time.Time       `json:"occurred_at"`
}

// AppendRecord adds a record to a story the actor owns. Records are
// append-only; there is no edit or delete endpoint.
// POST /api/v1/stories/:id/records
func (h *Handlers) AppendRecord(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	story, err := h.stories.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondNotFound(c, "story")
		return
	}
	if story.UserID != userID {
		util.RespondForbidden(c, "only the owner can add records")
		return
	}

	var req AppendRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	for _, m := range req.Media {
		switch m.Kind {
		case models.MediaKindImage, models.MediaKindAudio, models.MediaKindVideo:
		default:
			util.RespondValidationError(c, "media", "unknown media kind")
			return
		}
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	record := &models.Record{
		StoryID:     story.ID,
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    isPublic,
		Location:    req.Location,
		Media:       req.Media,
	}
	if req.OccurredAt != nil {
		record.OccurredAt = req.OccurredAt.UTC()
	}

	ctx, span := h.events.TraceRecordAppend(c.Request.Context(), story.ID, len(req.Media))
	err = h.stories.AppendRecord(ctx, record)
	telemetry.EndWithError(span, err)
	if err != nil {
		util.RespondInternalError(c, "failed to append record")
		return
	}

	h.notifyStoryFollowers(c, story, record)
	h.feed.InvalidateFor(userID)
	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// ListRecords returns a story's timeline, newest first
// GET /api/v1/stories/:id/records
func (h *Handlers) ListRecords(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	story, visible := h.visibleStory(c, userID)
	if !visible {
		return
	}

	limit := util.ParsePositiveInt(c.Query("limit"), 50)
	offset := util.ParseInt(c.Query("offset"), 0)
	records, err := h.stories.ListRecords(c.Request.Context(), story.ID, limit, offset)
	if err != nil {
		util.RespondInternalError(c, "failed to list records")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   story.RecordCount,
	})
}

// notifyStoryFollowers fans a new-record notification out to the story's
// direct followers. Best effort; a failed notification never fails the append.
func (h *Handlers) notifyStoryFollowers(c *gin.Context, story *models.Story, record *models.Record) {
	followerIDs, err := h.storyFollows.ListStoryFollowerIDs(c.Request.Context(), story.ID)
	if err != nil || len(followerIDs) == 0 {
		return
	}

	notifications := make([]models.Notification, 0, len(followerIDs))
	for _, fid := range followerIDs {
		notifications = append(notifications, models.Notification{
			UserID:  fid,
			ActorID: story.UserID,
			Kind:    models.NotificationNewRecord,
			StoryID: &story.ID,
		})
	}
	database.DB.Create(&notifications)
}
