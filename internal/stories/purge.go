package stories

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	applogger "github.com/connectos/backend/internal/logger"
	"github.com/connectos/backend/internal/models"
)

// DefaultRetention is how long a deleted story stays recoverable before
// its rows are removed for good.
const DefaultRetention = 30 * 24 * time.Hour

// PurgeService permanently removes stories that were soft deleted longer
// than the retention window ago, along with their records, comments,
// follows and notifications.
type PurgeService struct {
	db        *gorm.DB
	retention time.Duration
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewPurgeService(db *gorm.DB, retention, interval time.Duration) *PurgeService {
	if retention <= 0 {
		retention = DefaultRetention
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PurgeService{
		db:        db,
		retention: retention,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start runs one purge immediately and then repeats on the interval.
func (s *PurgeService) Start() {
	applogger.Log.Info("starting story purge service",
		zap.Duration("retention", s.retention),
		zap.Duration("interval", s.interval))
	go s.run()
}

func (s *PurgeService) Stop() {
	s.cancel()
}

func (s *PurgeService) run() {
	if _, err := s.PurgeOnce(s.ctx); err != nil {
		applogger.Log.Error("story purge failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.PurgeOnce(s.ctx); err != nil {
				applogger.Log.Error("story purge failed", zap.Error(err))
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// PurgeOnce removes all stories whose soft-delete timestamp is older than
// the retention window. Returns the number of stories purged.
func (s *PurgeService) PurgeOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.retention)

	var expired []models.Story
	err := s.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Find(&expired).Error
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	purged := 0
	for _, story := range expired {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Unscoped().Where("story_id = ?", story.ID).Delete(&models.Record{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("story_id = ?", story.ID).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("story_id = ?", story.ID).Delete(&models.StoryFollow{}).Error; err != nil {
				return err
			}
			if err := tx.Where("story_id = ?", story.ID).Delete(&models.Notification{}).Error; err != nil {
				return err
			}
			return tx.Unscoped().Delete(&models.Story{}, "id = ?", story.ID).Error
		})
		if err != nil {
			applogger.Log.Warn("failed to purge story",
				zap.String("story_id", story.ID),
				zap.Error(err))
			continue
		}
		purged++
	}

	applogger.Log.Info("story purge completed",
		zap.Int("purged", purged),
		zap.Int("candidates", len(expired)))
	return purged, nil
}
