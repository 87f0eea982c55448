package handlers

import (
	"github.com/connectos/backend/internal/auth"
	"github.com/connectos/backend/internal/feed"
	"github.com/connectos/backend/internal/repository"
	"github.com/connectos/backend/internal/telemetry"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth         *auth.Service
	feed         *feed.Service
	follows      repository.FollowRepository
	storyFollows repository.StoryFollowRepository
	stories      repository.StoryRepository
	events       *telemetry.BusinessEvents
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	authService *auth.Service,
	feedService *feed.Service,
	follows repository.FollowRepository,
	storyFollows repository.StoryFollowRepository,
	stories repository.StoryRepository,
) *Handlers {
	return &Handlers{
		auth:         authService,
		feed:         feedService,
		follows:      follows,
		storyFollows: storyFollows,
		stories:      stories,
		events:       telemetry.NewBusinessEvents(),
	}
}
