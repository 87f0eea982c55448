package repository

import (
	"context"

	"github.com/connectos/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoryFollowRepository manages the user-follows-story relation.
type StoryFollowRepository interface {
	Set(ctx context.Context, followerID, storyID string, desired bool) (changed bool, err error)
	Exists(ctx context.Context, followerID, storyID string) (bool, error)
	ListFollowedStoryIDs(ctx context.Context, followerID string) ([]string, error)
	ListStoryFollowerIDs(ctx context.Context, storyID string) ([]string, error)
}

type storyFollowRepository struct {
	db *gorm.DB
}

func NewStoryFollowRepository(db *gorm.DB) StoryFollowRepository {
	return &storyFollowRepository{db: db}
}

func (r *storyFollowRepository) Set(ctx context.Context, followerID, storyID string, desired bool) (bool, error) {
	if desired {
		sf := &models.StoryFollow{FollowerID: followerID, StoryID: storyID}
		res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(sf)
		if res.Error != nil {
			return false, res.Error
		}
		return res.RowsAffected > 0, nil
	}

	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND story_id = ?", followerID, storyID).
		Delete(&models.StoryFollow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *storyFollowRepository) Exists(ctx context.Context, followerID, storyID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&models.StoryFollow{}).
		Where("follower_id = ? AND story_id = ?", followerID, storyID).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *storyFollowRepository) ListFollowedStoryIDs(ctx context.Context, followerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.StoryFollow{}).
		Select("story_id").
		Where("follower_id = ?", followerID).
		Scan(&ids).Error
	return ids, err
}

func (r *storyFollowRepository) ListStoryFollowerIDs(ctx context.Context, storyID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.StoryFollow{}).
		Select("follower_id").
		Where("story_id = ?", storyID).
		Scan(&ids).Error
	return ids, err
}
