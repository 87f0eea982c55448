package feed

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/connectos/backend/internal/errors"
	applogger "github.com/connectos/backend/internal/logger"
	"github.com/connectos/backend/internal/models"
	"github.com/connectos/backend/internal/repository"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ResolverTestSuite exercises feed resolution against a real database.
type ResolverTestSuite struct {
	suite.Suite
	db       *gorm.DB
	resolver *Resolver
	service  *Service
	clock    *fakeClock
}

func (suite *ResolverTestSuite) SetupTest() {
	require.NoError(suite.T(), applogger.Initialize("error", ""))

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(suite.T(), err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.StoryFollow{},
		&models.Story{},
		&models.Record{},
	)
	require.NoError(suite.T(), err)

	suite.db = db
	suite.clock = newFakeClock()
	suite.resolver = NewResolver(
		repository.NewFollowRepository(db),
		repository.NewStoryFollowRepository(db),
		repository.NewStoryRepository(db),
	).WithClock(suite.clock.Now)
	suite.service = NewService(suite.resolver, NewCache(suite.clock.Now))
}

func (suite *ResolverTestSuite) createUser(username string) *models.User {
	u := &models.User{
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: username,
	}
	require.NoError(suite.T(), suite.db.Create(u).Error)
	return u
}

func (suite *ResolverTestSuite) createStory(owner *models.User, name string, public bool, activity time.Time) *models.Story {
	s := &models.Story{
		UserID:         owner.ID,
		Name:           name,
		StoryType:      models.StoryTypeObject,
		IsPublic:       public,
		LastActivityAt: activity,
	}
	require.NoError(suite.T(), suite.db.Create(s).Error)
	return s
}

func (suite *ResolverTestSuite) follow(follower, target *models.User) {
	require.NoError(suite.T(), suite.db.Create(&models.Follow{
		FollowerID:  follower.ID,
		FollowingID: target.ID,
	}).Error)
}

func (suite *ResolverTestSuite) followStory(follower *models.User, story *models.Story) {
	require.NoError(suite.T(), suite.db.Create(&models.StoryFollow{
		FollowerID: follower.ID,
		StoryID:    story.ID,
	}).Error)
}

func (suite *ResolverTestSuite) addRecords(story *models.Story, n int) {
	for i := 0; i < n; i++ {
		require.NoError(suite.T(), suite.db.Create(&models.Record{
			StoryID:    story.ID,
			Title:      "entry",
			OccurredAt: story.LastActivityAt,
		}).Error)
	}
}

func entryIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.StoryID
	}
	return ids
}

func (suite *ResolverTestSuite) TestOwnStoriesAlwaysIncluded() {
	viewer := suite.createUser("viewer")
	own := suite.createStory(viewer, "My Attic", false, suite.clock.Now())

	entries, err := suite.resolver.Resolve(context.Background(), viewer.ID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal(own.ID, entries[0].StoryID)
	suite.True(entries[0].IsOwnStory)
}

func (suite *ResolverTestSuite) TestFollowedUsersContributeOnlyPublicStories() {
	viewer := suite.createUser("viewer")
	author := suite.createUser("author")
	suite.follow(viewer, author)

	public := suite.createStory(author, "Open Journal", true, suite.clock.Now())
	suite.createStory(author, "Hidden Journal", false, suite.clock.Now())

	entries, err := suite.resolver.Resolve(context.Background(), viewer.ID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal(public.ID, entries[0].StoryID)
	suite.False(entries[0].IsOwnStory)
}

func (suite *ResolverTestSuite) TestDirectlyFollowedStoryVisibility() {
	viewer := suite.createUser("viewer")
	stranger := suite.createUser("stranger")

	publicStory := suite.createStory(stranger, "Shared Garden", true, suite.clock.Now())
	privateStory := suite.createStory(stranger, "Locked Diary", false, suite.clock.Now())
	suite.followStory(viewer, publicStory)
	suite.followStory(viewer, privateStory)

	entries, err := suite.resolver.Resolve(context.Background(), viewer.ID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal(publicStory.ID, entries[0].StoryID)
}

func (suite *ResolverTestSuite) TestEmptyFollowSetsStillYieldOwnStories() {
	viewer := suite.createUser("viewer")
	own := suite.createStory(viewer, "Solo Story", true, suite.clock.Now())

	entries, err := suite.resolver.Resolve(context.Background(), viewer.ID)
	suite.Require().NoError(err)
	suite.Equal([]string{own.ID}, entryIDs(entries))
}

func (suite *ResolverTestSuite) TestScenarioOwnPlusFollowedAuthor() {
	u1 := suite.createUser("u1")
	u2 := suite.createUser("u2")
	suite.follow(u1, u2)

	now := suite.clock.Now()
	s1 := suite.createStory(u1, "S1", true, now)
	s2 := suite.createStory(u2, "S2", true, now.Add(-time.Hour))
	suite.createStory(u2, "S3", false, now)
	suite.addRecords(s1, 3)

	entries, err := suite.resolver.Resolve(context.Background(), u1.ID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)

	Sort(entries, SortRecent)
	suite.Equal(s1.ID, entries[0].StoryID)
	suite.True(entries[0].IsOwnStory)
	suite.EqualValues(3, entries[0].RecordCount)
	suite.Equal(s2.ID, entries[1].StoryID)
	suite.False(entries[1].IsOwnStory)
	suite.EqualValues(0, entries[1].RecordCount)
}

func (suite *ResolverTestSuite) TestEntriesCarryAuthorProfile() {
	viewer := suite.createUser("viewer")
	author := suite.createUser("author")
	author.DisplayName = "Ada Author"
	author.AvatarURL = "https://img.example.com/ada.png"
	suite.Require().NoError(suite.db.Save(author).Error)
	suite.follow(viewer, author)
	suite.createStory(author, "Notebook", true, suite.clock.Now())

	entries, err := suite.resolver.Resolve(context.Background(), viewer.ID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal("Ada Author", entries[0].AuthorName)
	suite.Equal("https://img.example.com/ada.png", entries[0].AuthorAvatarURL)
	suite.NotEmpty(entries[0].LastUpdatedHuman)
}

func (suite *ResolverTestSuite) TestResolveFailureIsFeedFetchFailed() {
	viewer := suite.createUser("viewer")
	suite.Require().NoError(suite.db.Migrator().DropTable(&models.Story{}))

	_, err := suite.resolver.Resolve(context.Background(), viewer.ID)
	suite.Require().Error(err)

	apiErr, ok := err.(*apperrors.APIError)
	suite.Require().True(ok)
	suite.Equal(apperrors.ErrFeedFetchFailed, apiErr.Code)
}

func (suite *ResolverTestSuite) TestServiceCachesWithinTTL() {
	viewer := suite.createUser("viewer")
	suite.createStory(viewer, "Cached Story", true, suite.clock.Now())

	first, err := suite.service.GetFeed(context.Background(), viewer.ID, false)
	suite.Require().NoError(err)
	suite.Len(first.Entries, 1)

	// A story created after caching is invisible until the TTL lapses.
	suite.createStory(viewer, "Newer Story", true, suite.clock.Now())
	second, err := suite.service.GetFeed(context.Background(), viewer.ID, false)
	suite.Require().NoError(err)
	suite.Len(second.Entries, 1)

	suite.clock.Advance(CacheTTL)
	third, err := suite.service.GetFeed(context.Background(), viewer.ID, false)
	suite.Require().NoError(err)
	suite.Len(third.Entries, 2)
}

func (suite *ResolverTestSuite) TestForceRefreshBypassesCache() {
	viewer := suite.createUser("viewer")
	suite.createStory(viewer, "First", true, suite.clock.Now())

	_, err := suite.service.GetFeed(context.Background(), viewer.ID, false)
	suite.Require().NoError(err)

	suite.createStory(viewer, "Second", true, suite.clock.Now())
	res, err := suite.service.GetFeed(context.Background(), viewer.ID, true)
	suite.Require().NoError(err)
	suite.Len(res.Entries, 2)
}

func (suite *ResolverTestSuite) TestStaleCachePreferredOverBlankOnFailure() {
	viewer := suite.createUser("viewer")
	suite.createStory(viewer, "Kept Story", true, suite.clock.Now())

	_, err := suite.service.GetFeed(context.Background(), viewer.ID, false)
	suite.Require().NoError(err)

	suite.clock.Advance(CacheTTL + time.Minute)
	suite.Require().NoError(suite.db.Migrator().DropTable(&models.Story{}))

	res, err := suite.service.GetFeed(context.Background(), viewer.ID, false)
	suite.Require().Error(err)
	suite.True(res.Stale)
	suite.Require().Len(res.Entries, 1)
	suite.Equal("Kept Story", res.Entries[0].Name)
}

func TestResolverTestSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}
