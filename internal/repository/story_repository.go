package repository

import (
	"context"
	"time"

	"github.com/connectos/backend/internal/models"
	"gorm.io/gorm"
)

// Profile is the slim author projection the feed needs. Fetching it in one
// batched query keeps feed resolution at a fixed number of round trips.
type Profile struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   string
}

// StoryFilter narrows ListStories. Zero-value fields are ignored; set fields
// combine with AND.
type StoryFilter struct {
	OwnerID    string
	OwnerIn    []string
	IDIn       []string
	OnlyPublic bool
	Limit      int
	Offset     int
}

type StoryRepository interface {
	GetByID(ctx context.Context, id string) (*models.Story, error)
	Create(ctx context.Context, story *models.Story) error
	Update(ctx context.Context, story *models.Story) error
	Delete(ctx context.Context, id string) error
	ListStories(ctx context.Context, f StoryFilter) ([]models.Story, error)

	// ListFeedCandidates returns every story visible in viewerID's feed:
	// the viewer's own stories, public stories by followed users, and
	// directly followed stories the viewer is allowed to see.
	ListFeedCandidates(ctx context.Context, viewerID string, followedUserIDs, followedStoryIDs []string) ([]models.Story, error)

	ProfilesByID(ctx context.Context, userIDs []string) (map[string]Profile, error)
	RecordCounts(ctx context.Context, storyIDs []string) (map[string]int64, error)

	// AppendRecord inserts a record and bumps the story's cached counters in
	// one transaction. record_count only grows and last_activity_at only
	// moves forward.
	AppendRecord(ctx context.Context, record *models.Record) error
	ListRecords(ctx context.Context, storyID string, limit, offset int) ([]models.Record, error)
}

type storyRepository struct {
	db *gorm.DB
}

func NewStoryRepository(db *gorm.DB) StoryRepository { return &storyRepository{db: db} }

func (r *storyRepository) GetByID(ctx context.Context, id string) (*models.Story, error) {
	var story models.Story
	if err := r.db.WithContext(ctx).First(&story, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *storyRepository) Update(ctx context.Context, story *models.Story) error {
	return r.db.WithContext(ctx).Save(story).Error
}

func (r *storyRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Story{}, "id = ?", id).Error
}

func (r *storyRepository) ListStories(ctx context.Context, f StoryFilter) ([]models.Story, error) {
	q := r.db.WithContext(ctx).Model(&models.Story{})
	if f.OwnerID != "" {
		q = q.Where("user_id = ?", f.OwnerID)
	}
	if len(f.OwnerIn) > 0 {
		q = q.Where("user_id IN ?", f.OwnerIn)
	}
	if len(f.IDIn) > 0 {
		q = q.Where("id IN ?", f.IDIn)
	}
	if f.OnlyPublic {
		q = q.Where("is_public = ?", true)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var stories []models.Story
	err := q.Order("last_activity_at DESC").Find(&stories).Error
	return stories, err
}

func (r *storyRepository) ListFeedCandidates(ctx context.Context, viewerID string, followedUserIDs, followedStoryIDs []string) ([]models.Story, error) {
	db := r.db.WithContext(ctx)

	cond := db.Where("user_id = ?", viewerID)
	if len(followedUserIDs) > 0 {
		cond = cond.Or(db.Where("user_id IN ? AND is_public = ?", followedUserIDs, true))
	}
	if len(followedStoryIDs) > 0 {
		cond = cond.Or(db.Where("id IN ? AND (is_public = ? OR user_id = ?)", followedStoryIDs, true, viewerID))
	}

	var stories []models.Story
	err := db.Model(&models.Story{}).Where(cond).Find(&stories).Error
	return stories, err
}

func (r *storyRepository) ProfilesByID(ctx context.Context, userIDs []string) (map[string]Profile, error) {
	out := make(map[string]Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var rows []Profile
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id, username, display_name, avatar_url").
		Where("id IN ?", userIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *storyRepository) RecordCounts(ctx context.Context, storyIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(storyIDs))
	if len(storyIDs) == 0 {
		return out, nil
	}

	type row struct {
		StoryID string
		N       int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Record{}).
		Select("story_id, COUNT(*) AS n").
		Where("story_id IN ?", storyIDs).
		Group("story_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		out[rw.StoryID] = rw.N
	}
	return out, nil
}

func (r *storyRepository) AppendRecord(ctx context.Context, record *models.Record) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var story models.Story
		if err := tx.First(&story, "id = ?", record.StoryID).Error; err != nil {
			return err
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"record_count": story.RecordCount + 1,
		}
		activity := record.OccurredAt
		if activity.IsZero() {
			activity = time.Now().UTC()
		}
		if activity.After(story.LastActivityAt) {
			updates["last_activity_at"] = activity
		}
		return tx.Model(&models.Story{}).Where("id = ?", story.ID).Updates(updates).Error
	})
}

func (r *storyRepository) ListRecords(ctx context.Context, storyID string, limit, offset int) ([]models.Record, error) {
	q := r.db.WithContext(ctx).Where("story_id = ?", storyID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var records []models.Record
	err := q.Order("occurred_at DESC").Find(&records).Error
	return records, err
}
