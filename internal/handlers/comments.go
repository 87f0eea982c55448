package handlers

import (
	"net/http"

	"github.com/connectos/backend/internal/database"
	"github.com/connectos/backend/internal/models"
	"github.com/connectos/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// CreateComment adds a comment to a story the viewer can see
// POST /api/v1/stories/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	story, visible := h.visibleStory(c, userID)
	if !visible {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	comment := &models.Comment{
		StoryID: story.ID,
		UserID:  userID,
		Body:    req.Body,
	}
	if err := database.DB.Create(comment).Error; err != nil {
		util.RespondInternalError(c, "failed to create comment")
		return
	}

	// Commenting on your own story makes no notification.
	if story.UserID != userID {
		database.DB.Create(&models.Notification{
			UserID:  story.UserID,
			ActorID: userID,
			Kind:    models.NotificationComment,
			StoryID: &story.ID,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// ListComments returns a story's comments, oldest first, with authors
// GET /api/v1/stories/:id/comments
func (h *Handlers) ListComments(c *gin.Context) {
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

	var comments []models.Comment
	err := database.DB.Preload("User").
		Where("story_id = ?", story.ID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	if err != nil {
		util.RespondInternalError(c, "failed to list comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "total": len(comments)})
}

// DeleteComment removes a comment; allowed for its author or the story owner
// DELETE /api/v1/comments/:id
func (h *Handlers) DeleteComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var comment models.Comment
	if err := database.DB.Preload("Story").First(&comment, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "comment")
		return
	}
	if comment.UserID != userID && comment.Story.UserID != userID {
		util.RespondForbidden(c, "not your comment")
		return
	}

	if err := database.DB.Delete(&comment).Error; err != nil {
		util.RespondInternalError(c, "failed to delete comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
