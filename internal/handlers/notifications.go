package handlers

import (
	"net/http"

	"github.com/connectos/backend/internal/database"
	"github.com/connectos/backend/internal/models"
	"github.com/connectos/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// GetNotifications lists the viewer's notifications, newest first
// GET /api/v1/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParsePositiveInt(c.Query("limit"), 20)
	offset := util.ParseInt(c.Query("offset"), 0)

	var notifications []models.Notification
	err := database.DB.Preload("Actor").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error
	if err != nil {
		util.RespondInternalError(c, "failed to load notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(notifications),
		},
	})
}

// GetNotificationCounts returns unseen/unread counts for badge display
// GET /api/v1/notifications/counts
func (h *Handlers) GetNotificationCounts(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var unseen, unread int64
	database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_seen = ?", userID, false).Count(&unseen)
	database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).Count(&unread)

	c.JSON(http.StatusOK, gin.H{"unseen": unseen, "unread": unread})
}

// MarkNotificationsSeen marks all the viewer's notifications seen; the
// badge clears but unread markers stay.
// POST /api/v1/notifications/seen
func (h *Handlers) MarkNotificationsSeen(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	res := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_seen = ?", userID, false).
		UpdateColumn("is_seen", true)
	if res.Error != nil {
		util.RespondInternalError(c, "failed to mark notifications seen")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": res.RowsAffected})
}

// MarkNotificationRead marks a single notification read (and seen)
// POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	res := database.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		UpdateColumns(map[string]interface{}{"is_read": true, "is_seen": true})
	if res.Error != nil {
		util.RespondInternalError(c, "failed to mark notification read")
		return
	}
	if res.RowsAffected == 0 {
		util.RespondNotFound(c, "notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{"read": true})
}

// MarkAllNotificationsRead marks every notification read for the viewer
// POST /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	res := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		UpdateColumns(map[string]interface{}{"is_read": true, "is_seen": true})
	if res.Error != nil {
		util.RespondInternalError(c, "failed to mark notifications read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": res.RowsAffected})
}
