package handlers

import (
	"net/http"
	"time"

	"github.com/connectos/backend/internal/models"
	"github.com/connectos/backend/internal/repository"
	"github.com/connectos/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// CreateStoryRequest is the payload for creating a story
type CreateStoryRequest struct {
	Name          string           `json:"name" binding:"required,min=1,max=120"`
	Description   *string          `json:"description"`
	StoryType     models.StoryType `json:"story_type" binding:"required"`
	IsPublic      *bool            `json:"is_public"`
	Location      *models.Location `json:"location"`
	CoverImageURL string           `json:"cover_image_url"`
	ThumbnailURL  string           `json:"thumbnail_url"`
}

// UpdateStoryRequest carries only the fields the owner may edit
type UpdateStoryRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	IsPublic      *bool            `json:"is_public"`
	Location      *models.Location `json:"location"`
	CoverImageURL *string          `json:"cover_image_url"`
	ThumbnailURL  *string          `json:"thumbnail_url"`
}

// CreateStory creates a story owned by the authenticated user
// POST /api/v1/stories
func (h *Handlers) CreateStory(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	if !models.ValidStoryType(req.StoryType) {
		util.RespondValidationError(c, "story_type", "unknown story type")
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	story := &models.Story{
		UserID:        userID,
		Name:          req.Name,
		Description:   req.Description,
		StoryType:     req.StoryType,
		IsPublic:      isPublic,
		Location:      req.Location,
		CoverImageURL: req.CoverImageURL,
		ThumbnailURL:  req.ThumbnailURL,
	}
	if err := h.stories.Create(c.Request.Context(), story); err != nil {
		util.RespondInternalError(c, "failed to create story")
		return
	}

	h.feed.InvalidateFor(userID)
	c.JSON(http.StatusCreated, gin.H{"story": story})
}

// GetStory returns one story if the viewer may see it
// GET /api/v1/stories/:id
func (h *Handlers) GetStory(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	story, visible := h.visibleStory(c, userID)
	if !visible {
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story})
}

// ListMyStories returns all stories the authenticated user owns
// GET /api/v1/stories
func (h *Handlers) ListMyStories(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	stories, err := h.stories.ListStories(c.Request.Context(), repository.StoryFilter{OwnerID: userID})
	if err != nil {
		util.RespondInternalError(c, "failed to list stories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories, "total": len(stories)})
}

// ListUserStories lists another user's stories. Private stories are only
// included when the viewer is that user.
// GET /api/v1/users/:id/stories
func (h *Handlers) ListUserStories(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	ownerID := c.Param("id")

	filter := repository.StoryFilter{OwnerID: ownerID}
	if ownerID != viewerID {
		filter.OnlyPublic = true
	}

	stories, err := h.stories.ListStories(c.Request.Context(), filter)
	if err != nil {
		util.RespondInternalError(c, "failed to list stories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories, "total": len(stories)})
}

// UpdateStory edits a story; only its owner may do so
// PATCH /api/v1/stories/:id
func (h *Handlers) UpdateStory(c *gin.Context) {
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
		util.RespondForbidden(c, "only the owner can edit a story")
		return
	}

	var req UpdateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			util.RespondValidationError(c, "name", "name cannot be empty")
			return
		}
		story.Name = *req.Name
	}
	if req.Description != nil {
		story.Description = req.Description
	}
	if req.IsPublic != nil {
		story.IsPublic = *req.IsPublic
	}
	if req.Location != nil {
		story.Location = req.Location
	}
	if req.CoverImageURL != nil {
		story.CoverImageURL = *req.CoverImageURL
	}
	if req.ThumbnailURL != nil {
		story.ThumbnailURL = *req.ThumbnailURL
	}

	if err := h.stories.Update(c.Request.Context(), story); err != nil {
		util.RespondInternalError(c, "failed to update story")
		return
	}

	h.feed.InvalidateFor(userID)
	c.JSON(http.StatusOK, gin.H{"story": story})
}

// DeleteStory soft-deletes a story; only its owner may do so
// DELETE /api/v1/stories/:id
func (h *Handlers) DeleteStory(c *gin.Context) {
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
		util.RespondForbidden(c, "only the owner can delete a story")
		return
	}

	if err := h.stories.Delete(c.Request.Context(), story.ID); err != nil {
		util.RespondInternalError(c, "failed to delete story")
		return
	}

	h.feed.InvalidateFor(userID)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ExportStory returns the full story timeline as a single JSON document,
// suitable for download or archival.
// GET /api/v1/stories/:id/export
func (h *Handlers) ExportStory(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	story, visible := h.visibleStory(c, userID)
	if !visible {
		return
	}

	records, err := h.stories.ListRecords(c.Request.Context(), story.ID, 0, 0)
	if err != nil {
		util.RespondInternalError(c, "failed to load story records")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="story-`+story.ID+`.json"`)
	c.JSON(http.StatusOK, gin.H{
		"story":       story,
		"records":     records,
		"exported_at": time.Now().UTC(),
	})
}

// visibleStory loads the story from the path parameter and enforces
// visibility: private stories exist only for their owners. Writes the
// response itself on failure.
func (h *Handlers) visibleStory(c *gin.Context, viewerID string) (*models.Story, bool) {
	story, err := h.stories.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondNotFound(c, "story")
		return nil, false
	}
	if !story.IsPublic && story.UserID != viewerID {
		// 404 rather than 403: do not confirm a private story exists.
		util.RespondNotFound(c, "story")
		return nil, false
	}
	return story, true
}
