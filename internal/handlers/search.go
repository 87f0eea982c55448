package handlers

import (
	"net/http"
	"strings"

	"github.com/connectos/backend/internal/database"
	"github.com/connectos/backend/internal/models"
	"github.com/connectos/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// SearchStories finds stories by name or description. Only public stories
// and the viewer's own are searchable.
// GET /api/v1/search/stories?q=&limit=&offset=
func (h *Handlers) SearchStories(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		util.RespondBadRequest(c, "query parameter q is required")
		return
	}
	limit := util.ParsePositiveInt(c.Query("limit"), 20)
	if limit > 100 {
		limit = 100
	}
	offset := util.ParseInt(c.Query("offset"), 0)

	pattern := "%" + strings.ToLower(q) + "%"
	var stories []models.Story
	err := database.DB.
		Where("is_public = ? OR user_id = ?", true, userID).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("last_activity_at DESC").
		Limit(limit).Offset(offset).
		Preload("User").
		Find(&stories).Error
	if err != nil {
		util.RespondInternalError(c, "search failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stories": stories,
		"total":   len(stories),
		"query":   q,
	})
}
