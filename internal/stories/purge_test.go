package stories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	applogger "github.com/connectos/backend/internal/logger"
	"github.com/connectos/backend/internal/models"
)

type PurgeTestSuite struct {
	suite.Suite
	db *gorm.DB
}

func (s *PurgeTestSuite) SetupTest() {
	require.NoError(s.T(), applogger.Initialize("error", ""))

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), db.AutoMigrate(
		&models.User{}, &models.Follow{}, &models.StoryFollow{},
		&models.Story{}, &models.Record{}, &models.Comment{},
		&models.Notification{},
	))
	s.db = db
}

func (s *PurgeTestSuite) createStory(name string, deletedAt *time.Time) models.Story {
	hash := "x"
	user := models.User{Username: name + "-owner", Email: name + "@example.com", PasswordHash: &hash}
	require.NoError(s.T(), s.db.Create(&user).Error)

	story := models.Story{UserID: user.ID, Name: name, IsPublic: true, StoryType: models.StoryTypeOther}
	require.NoError(s.T(), s.db.Create(&story).Error)

	require.NoError(s.T(), s.db.Create(&models.Record{StoryID: story.ID, Title: "entry"}).Error)
	require.NoError(s.T(), s.db.Create(&models.Comment{StoryID: story.ID, UserID: user.ID, Body: "hi"}).Error)

	if deletedAt != nil {
		require.NoError(s.T(), s.db.Model(&models.Story{}).Unscoped().
			Where("id = ?", story.ID).
			Update("deleted_at", *deletedAt).Error)
	}
	return story
}

func (s *PurgeTestSuite) TestPurgesStoriesPastRetention() {
	old := time.Now().UTC().Add(-40 * 24 * time.Hour)
	recent := time.Now().UTC().Add(-time.Hour)

	expired := s.createStory("expired", &old)
	fresh := s.createStory("fresh-delete", &recent)
	alive := s.createStory("alive", nil)

	svc := NewPurgeService(s.db, DefaultRetention, time.Hour)
	purged, err := svc.PurgeOnce(context.Background())
	require.NoError(s.T(), err)
	s.Equal(1, purged)

	var count int64
	s.db.Unscoped().Model(&models.Story{}).Where("id = ?", expired.ID).Count(&count)
	s.Equal(int64(0), count, "expired story should be gone entirely")

	s.db.Unscoped().Model(&models.Record{}).Where("story_id = ?", expired.ID).Count(&count)
	s.Equal(int64(0), count, "records of purged story should be gone")

	s.db.Unscoped().Model(&models.Comment{}).Where("story_id = ?", expired.ID).Count(&count)
	s.Equal(int64(0), count, "comments of purged story should be gone")

	s.db.Unscoped().Model(&models.Story{}).Where("id = ?", fresh.ID).Count(&count)
	s.Equal(int64(1), count, "recently deleted story stays recoverable")

	s.db.Model(&models.Story{}).Where("id = ?", alive.ID).Count(&count)
	s.Equal(int64(1), count)
}

func (s *PurgeTestSuite) TestNothingToPurge() {
	s.createStory("only-live", nil)

	svc := NewPurgeService(s.db, DefaultRetention, time.Hour)
	purged, err := svc.PurgeOnce(context.Background())
	require.NoError(s.T(), err)
	s.Equal(0, purged)
}

func TestPurgeTestSuite(t *testing.T) {
	suite.Run(t, new(PurgeTestSuite))
}
