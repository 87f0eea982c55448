package feed

import (
	"time"

	"github.com/connectos/backend/internal/models"
	"github.com/connectos/backend/internal/repository"
	"github.com/dustin/go-humanize"
)

// Entry is a story enriched with everything a feed row needs. Entries are
// derived per request and never persisted.
type Entry struct {
	StoryID     string           `json:"story_id"`
	OwnerID     string           `json:"owner_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	StoryType   models.StoryType `json:"story_type"`
	IsPublic    bool             `json:"is_public"`

	Location *models.Location `json:"location,omitempty"`

	CoverImageURL string `json:"cover_image_url,omitempty"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`

	AuthorName      string `json:"author_name"`
	AuthorAvatarURL string `json:"author_avatar_url,omitempty"`

	RecordCount      int64     `json:"record_count"`
	LastActivityAt   time.Time `json:"last_activity_at"`
	LastUpdatedHuman string    `json:"last_updated"`

	IsOwnStory bool `json:"is_own_story"`
}

// buildEntry assembles an Entry from a story plus the batched lookups.
// A missing profile or count degrades that field only; the story itself
// stays in the feed.
func buildEntry(story models.Story, viewerID string, profiles map[string]repository.Profile, counts map[string]int64, now time.Time) Entry {
	e := Entry{
		StoryID:        story.ID,
		OwnerID:        story.UserID,
		Name:           story.Name,
		StoryType:      story.StoryType,
		IsPublic:       story.IsPublic,
		Location:       story.Location,
		CoverImageURL:  story.CoverImageURL,
		ThumbnailURL:   story.ThumbnailURL,
		RecordCount:    counts[story.ID],
		LastActivityAt: story.LastActivityAt,
		IsOwnStory:     story.UserID == viewerID,
	}
	if story.Description != nil {
		e.Description = *story.Description
	}
	if p, ok := profiles[story.UserID]; ok {
		e.AuthorName = p.DisplayName
		if e.AuthorName == "" {
			e.AuthorName = p.Username
		}
		e.AuthorAvatarURL = p.AvatarURL
	}
	if !story.LastActivityAt.IsZero() {
		e.LastUpdatedHuman = humanize.RelTime(story.LastActivityAt, now, "ago", "from now")
	}
	return e
}
