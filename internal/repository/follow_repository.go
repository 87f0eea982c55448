package repository

import (
	"context"

	"github.com/connectos/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository manages the user-follows-user relation.
// Set is idempotent by design: retried requests cannot double-toggle.
type FollowRepository interface {
	// Set makes "follower follows target" equal desired and reports whether
	// the stored state changed.
	Set(ctx context.Context, followerID, targetUserID string, desired bool) (changed bool, err error)
	Exists(ctx context.Context, followerID, targetUserID string) (bool, error)
	ListFollowingIDs(ctx context.Context, followerID string) ([]string, error)
	ListFollowerIDs(ctx context.Context, userID string) ([]string, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Set(ctx context.Context, followerID, targetUserID string, desired bool) (bool, error) {
	if desired {
		f := &models.Follow{FollowerID: followerID, FollowingID: targetUserID}
		res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
		if res.Error != nil {
			return false, res.Error
		}
		return res.RowsAffected > 0, nil
	}

	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, targetUserID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, targetUserID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, targetUserID).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) ListFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Select("following_id").
		Where("follower_id = ?", followerID).
		Scan(&ids).Error
	return ids, err
}

func (r *followRepository) ListFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Select("follower_id").
		Where("following_id = ?", userID).
		Scan(&ids).Error
	return ids, err
}
