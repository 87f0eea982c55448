package handlers

import (
	"net/http"

	"github.com/connectos/backend/internal/database"
	"github.com/connectos/backend/internal/models"
	"github.com/connectos/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// publicProfile strips fields other users should not see
type publicProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	Bio            string `json:"bio,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	StoryCount     int    `json:"story_count"`
}

func toPublicProfile(u *models.User) publicProfile {
	return publicProfile{
		ID:             u.ID,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		Bio:            u.Bio,
		AvatarURL:      u.AvatarURL,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		StoryCount:     u.StoryCount,
	}
}

// GetUserProfile returns another user's public profile, plus whether the
// viewer follows them.
// GET /api/v1/users/:id
func (h *Handlers) GetUserProfile(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	following := false
	if user.ID != viewerID {
		following, _ = h.follows.Exists(c.Request.Context(), viewerID, user.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      toPublicProfile(&user),
		"following": following,
	})
}

// UpdateMyProfile edits the authenticated user's own profile
// PATCH /api/v1/users/me
func (h *Handlers) UpdateMyProfile(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req struct {
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
		AvatarURL   *string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if req.DisplayName != nil {
		if *req.DisplayName == "" {
			util.RespondValidationError(c, "display_name", "display name cannot be empty")
			return
		}
		user.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	if err := database.DB.Save(user).Error; err != nil {
		util.RespondInternalError(c, "failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUserFollowers lists who follows the given user
// GET /api/v1/users/:id/followers
func (h *Handlers) GetUserFollowers(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}
	h.listRelatedProfiles(c, func(targetID string) ([]string, error) {
		return h.follows.ListFollowerIDs(c.Request.Context(), targetID)
	})
}

// GetUserFollowing lists who the given user follows
// GET /api/v1/users/:id/following
func (h *Handlers) GetUserFollowing(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}
	h.listRelatedProfiles(c, func(targetID string) ([]string, error) {
		return h.follows.ListFollowingIDs(c.Request.Context(), targetID)
	})
}

func (h *Handlers) listRelatedProfiles(c *gin.Context, listIDs func(string) ([]string, error)) {
	targetID := c.Param("id")
	var target models.User
	if err := database.DB.First(&target, "id = ?", targetID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	ids, err := listIDs(targetID)
	if err != nil {
		util.RespondInternalError(c, "failed to load follow list")
		return
	}

	profiles := make([]publicProfile, 0, len(ids))
	if len(ids) > 0 {
		var users []models.User
		if err := database.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
			util.RespondInternalError(c, "failed to load profiles")
			return
		}
		for i := range users {
			profiles = append(profiles, toPublicProfile(&users[i]))
		}
	}

	c.JSON(http.StatusOK, gin.H{"users": profiles, "total": len(profiles)})
}
