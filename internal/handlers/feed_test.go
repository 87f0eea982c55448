package handlers

import (
	"net/http"
	"time"

	"github.com/connectos/backend/internal/feed"
	"github.com/connectos/backend/internal/models"
)

func (suite *HandlersTestSuite) feedEntries(body map[string]interface{}) []interface{} {
	entries, _ := body["entries"].([]interface{})
	return entries
}

func (suite *HandlersTestSuite) TestFeedContainsOwnAndFollowedContent() {
	alice := suite.register("alice")
	bob := suite.register("bob")

	own := suite.createStory(alice, "Alice Attic", false)
	suite.createStory(bob, "Bob Public", true)
	suite.createStory(bob, "Bob Private", false)

	// Before following bob, only alice's own story shows.
	w := suite.request(http.MethodGet, "/api/v1/feed", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	body := decodeBody(suite.T(), w)
	suite.EqualValues(1, body["total"])
	entry := suite.feedEntries(body)[0].(map[string]interface{})
	suite.Equal(own.ID, entry["story_id"])
	suite.Equal(true, entry["is_own_story"])

	// After following, bob's public story joins; his private one never does.
	suite.request(http.MethodPut, "/api/v1/users/"+bob.user.ID+"/follow", alice.token, nil)
	w = suite.request(http.MethodGet, "/api/v1/feed", alice.token, nil)
	body = decodeBody(suite.T(), w)
	suite.EqualValues(2, body["total"])
}

func (suite *HandlersTestSuite) TestFeedSortAndFilterParams() {
	alice := suite.register("alice")
	suite.createStory(alice, "Banjo Repair", true)
	suite.createStory(alice, "Apple Harvest", true)
	suite.createStory(alice, "Cider Press", true)

	w := suite.request(http.MethodGet, "/api/v1/feed?sort=alphabetical", alice.token, nil)
	body := decodeBody(suite.T(), w)
	entries := suite.feedEntries(body)
	suite.Require().Len(entries, 3)
	suite.Equal("Apple Harvest", entries[0].(map[string]interface{})["name"])
	suite.Equal("Banjo Repair", entries[1].(map[string]interface{})["name"])

	w = suite.request(http.MethodGet, "/api/v1/feed?q=press", alice.token, nil)
	body = decodeBody(suite.T(), w)
	suite.EqualValues(1, body["total"])
	suite.Equal("Cider Press", suite.feedEntries(body)[0].(map[string]interface{})["name"])
}

func (suite *HandlersTestSuite) TestFeedPaginationClamps() {
	alice := suite.register("alice")
	for _, name := range []string{"One", "Two", "Three", "Four", "Five", "Six", "Seven"} {
		suite.createStory(alice, name, true)
	}

	w := suite.request(http.MethodGet, "/api/v1/feed?page=2&page_size=5", alice.token, nil)
	body := decodeBody(suite.T(), w)
	suite.EqualValues(2, body["page"])
	suite.EqualValues(2, body["total_pages"])
	suite.Len(suite.feedEntries(body), 2)

	// A page past the end clamps to the last page instead of erroring.
	w = suite.request(http.MethodGet, "/api/v1/feed?page=99&page_size=5", alice.token, nil)
	body = decodeBody(suite.T(), w)
	suite.Equal(http.StatusOK, w.Code)
	suite.EqualValues(2, body["page"])
	suite.Len(suite.feedEntries(body), 2)
}

func (suite *HandlersTestSuite) TestFeedCachedUntilTTL() {
	alice := suite.register("alice")
	suite.createStory(alice, "First", true)

	w := suite.request(http.MethodGet, "/api/v1/feed", alice.token, nil)
	suite.EqualValues(1, decodeBody(suite.T(), w)["total"])

	// Direct insert skips the handlers, so no cache invalidation happens.
	suite.Require().NoError(suite.db.Create(&models.Story{
		UserID:    alice.user.ID,
		Name:      "Sneaky",
		StoryType: models.StoryTypeObject,
		IsPublic:  true,
	}).Error)

	w = suite.request(http.MethodGet, "/api/v1/feed", alice.token, nil)
	suite.EqualValues(1, decodeBody(suite.T(), w)["total"], "cached feed served within TTL")

	suite.clock.Advance(feed.CacheTTL + time.Second)
	w = suite.request(http.MethodGet, "/api/v1/feed", alice.token, nil)
	suite.EqualValues(2, decodeBody(suite.T(), w)["total"], "fresh resolve after TTL")
}

func (suite *HandlersTestSuite) TestFeedRefreshParamBypassesCache() {
	alice := suite.register("alice")
	suite.createStory(alice, "First", true)

	suite.request(http.MethodGet, "/api/v1/feed", alice.token, nil)
	suite.Require().NoError(suite.db.Create(&models.Story{
		UserID:    alice.user.ID,
		Name:      "Second",
		StoryType: models.StoryTypeObject,
		IsPublic:  true,
	}).Error)

	w := suite.request(http.MethodGet, "/api/v1/feed?refresh=true", alice.token, nil)
	suite.EqualValues(2, decodeBody(suite.T(), w)["total"])
}

func (suite *HandlersTestSuite) TestRefreshFeedEndpoint() {
	alice := suite.register("alice")
	suite.createStory(alice, "Story", true)

	w := suite.request(http.MethodPost, "/api/v1/feed/refresh", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.EqualValues(1, decodeBody(suite.T(), w)["total"])
}

func (suite *HandlersTestSuite) TestFeedEntriesCarryRecordCounts() {
	alice := suite.register("alice")
	story := suite.createStory(alice, "Workbench", true)

	for i := 0; i < 3; i++ {
		w := suite.request(http.MethodPost, "/api/v1/stories/"+story.ID+"/records", alice.token, map[string]interface{}{
			"title": "entry",
		})
		suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w := suite.request(http.MethodGet, "/api/v1/feed", alice.token, nil)
	body := decodeBody(suite.T(), w)
	entry := suite.feedEntries(body)[0].(map[string]interface{})
	suite.EqualValues(3, entry["record_count"])
	suite.NotEmpty(entry["last_updated"])
	suite.Equal(alice.user.Username, entry["author_name"])
}

func (suite *HandlersTestSuite) TestFeedSortByRecords() {
	alice := suite.register("alice")
	busy := suite.createStory(alice, "Busy", true)
	suite.createStory(alice, "Quiet", true)

	for i := 0; i < 2; i++ {
		suite.request(http.MethodPost, "/api/v1/stories/"+busy.ID+"/records", alice.token, map[string]interface{}{
			"title": "entry",
		})
	}

	w := suite.request(http.MethodGet, "/api/v1/feed?sort=popularity", alice.token, nil)
	entries := suite.feedEntries(decodeBody(suite.T(), w))
	suite.Require().Len(entries, 2)
	suite.Equal("Busy", entries[0].(map[string]interface{})["name"])
}

func (suite *HandlersTestSuite) TestStaleFeedCarriesUnderlyingError() {
	alice := suite.register("alice")
	suite.createStory(alice, "Kept Story", true)

	w := suite.request(http.MethodGet, "/api/v1/feed", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)

	suite.clock.Advance(feed.CacheTTL + time.Second)
	suite.Require().NoError(suite.db.Migrator().DropTable(&models.Story{}))

	w = suite.request(http.MethodGet, "/api/v1/feed", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	body := decodeBody(suite.T(), w)
	suite.Equal(true, body["stale"])
	suite.EqualValues(1, body["total"], "last good feed is still served")

	errField, ok := body["error"].(map[string]interface{})
	suite.Require().True(ok, "stale response must explain what failed")
	suite.Equal("FEED_FETCH_FAILED", errField["code"])
	suite.NotEmpty(errField["message"])
}
