package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/connectos/backend/internal/models"
)

func (suite *HandlersTestSuite) TestCreateStoryValidation() {
	alice := suite.register("alice")

	w := suite.request(http.MethodPost, "/api/v1/stories", alice.token, map[string]interface{}{
		"story_type": "object",
	})
	suite.Equal(http.StatusBadRequest, w.Code, "name is required")

	w = suite.request(http.MethodPost, "/api/v1/stories", alice.token, map[string]interface{}{
		"name":       "Thing",
		"story_type": "spaceship",
	})
	suite.Equal(http.StatusUnprocessableEntity, w.Code, "unknown story type")
}

func (suite *HandlersTestSuite) TestPrivateStoryHiddenFromOthers() {
	alice := suite.register("alice")
	bob := suite.register("bob")
	story := suite.createStory(alice, "Secret", false)

	w := suite.request(http.MethodGet, "/api/v1/stories/"+story.ID, alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)

	// Private stories 404 for everyone else; existence is not confirmed.
	w = suite.request(http.MethodGet, "/api/v1/stories/"+story.ID, bob.token, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestUpdateStoryOwnerOnly() {
	alice := suite.register("alice")
	bob := suite.register("bob")
	story := suite.createStory(alice, "Original", true)

	w := suite.request(http.MethodPatch, "/api/v1/stories/"+story.ID, bob.token, map[string]interface{}{
		"name": "Hijacked",
	})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPatch, "/api/v1/stories/"+story.ID, alice.token, map[string]interface{}{
		"name": "Renamed",
	})
	suite.Equal(http.StatusOK, w.Code)

	var row models.Story
	suite.Require().NoError(suite.db.First(&row, "id = ?", story.ID).Error)
	suite.Equal("Renamed", row.Name)
}

func (suite *HandlersTestSuite) TestDeleteStory() {
	alice := suite.register("alice")
	story := suite.createStory(alice, "Doomed", true)

	w := suite.request(http.MethodDelete, "/api/v1/stories/"+story.ID, alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/stories/"+story.ID, alice.token, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestAppendRecordBumpsStoryCounters() {
	alice := suite.register("alice")
	story := suite.createStory(alice, "Workshop", true)

	w := suite.request(http.MethodPost, "/api/v1/stories/"+story.ID+"/records", alice.token, map[string]interface{}{
		"title": "sanded the top",
		"media": []map[string]string{{"id": "m1", "url": "https://img/x.jpg", "kind": "image"}},
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var row models.Story
	suite.Require().NoError(suite.db.First(&row, "id = ?", story.ID).Error)
	suite.EqualValues(1, row.RecordCount)
}

func (suite *HandlersTestSuite) TestAppendRecordOwnerOnly() {
	alice := suite.register("alice")
	bob := suite.register("bob")
	story := suite.createStory(alice, "Mine", true)

	w := suite.request(http.MethodPost, "/api/v1/stories/"+story.ID+"/records", bob.token, map[string]interface{}{
		"title": "vandalism",
	})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestAppendRecordRejectsUnknownMediaKind() {
	alice := suite.register("alice")
	story := suite.createStory(alice, "Media Test", true)

	w := suite.request(http.MethodPost, "/api/v1/stories/"+story.ID+"/records", alice.token, map[string]interface{}{
		"title": "bad media",
		"media": []map[string]string{{"id": "m1", "url": "u", "kind": "hologram"}},
	})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestNewRecordNotifiesStoryFollowers() {
	alice := suite.register("alice")
	bob := suite.register("bob")
	story := suite.createStory(alice, "Followed", true)

	suite.request(http.MethodPut, "/api/v1/stories/"+story.ID+"/follow", bob.token, nil)
	suite.request(http.MethodPost, "/api/v1/stories/"+story.ID+"/records", alice.token, map[string]interface{}{
		"title": "news",
	})

	var notif models.Notification
	err := suite.db.First(&notif, "user_id = ? AND kind = ?", bob.user.ID, models.NotificationNewRecord).Error
	suite.Require().NoError(err)
	suite.Equal(alice.user.ID, notif.ActorID)
}

func (suite *HandlersTestSuite) TestExportStoryIncludesTimeline() {
	alice := suite.register("alice")
	story := suite.createStory(alice, "Archive Me", true)
	suite.request(http.MethodPost, "/api/v1/stories/"+story.ID+"/records", alice.token, map[string]interface{}{
		"title": "first entry",
	})

	w := suite.request(http.MethodGet, "/api/v1/stories/"+story.ID+"/export", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Header().Get("Content-Disposition"), "attachment")

	var resp struct {
		Story   models.Story    `json:"story"`
		Records []models.Record `json:"records"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(story.ID, resp.Story.ID)
	suite.Len(resp.Records, 1)
}

func (suite *HandlersTestSuite) TestCommentsLifecycle() {
	alice := suite.register("alice")
	bob := suite.register("bob")
	story := suite.createStory(alice, "Discussable", true)

	w := suite.request(http.MethodPost, "/api/v1/stories/"+story.ID+"/comments", bob.token, map[string]string{
		"body": "lovely restoration",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	// The story owner is notified about the comment.
	var notif models.Notification
	err := suite.db.First(&notif, "user_id = ? AND kind = ?", alice.user.ID, models.NotificationComment).Error
	suite.Require().NoError(err)

	w = suite.request(http.MethodGet, "/api/v1/stories/"+story.ID+"/comments", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.EqualValues(1, decodeBody(suite.T(), w)["total"])

	var comment models.Comment
	suite.Require().NoError(suite.db.First(&comment, "story_id = ?", story.ID).Error)

	// The story owner may remove someone else's comment.
	w = suite.request(http.MethodDelete, "/api/v1/comments/"+comment.ID, alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestSearchStoriesRespectsVisibility() {
	alice := suite.register("alice")
	bob := suite.register("bob")
	suite.createStory(alice, "Public Garden", true)
	suite.createStory(alice, "Private Garden", false)

	w := suite.request(http.MethodGet, "/api/v1/search/stories?q=garden", bob.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.EqualValues(1, decodeBody(suite.T(), w)["total"])

	// Owners find their own private stories.
	w = suite.request(http.MethodGet, "/api/v1/search/stories?q=garden", alice.token, nil)
	suite.EqualValues(2, decodeBody(suite.T(), w)["total"])

	w = suite.request(http.MethodGet, "/api/v1/search/stories", alice.token, nil)
	suite.Equal(http.StatusBadRequest, w.Code, "missing query")
}

func (suite *HandlersTestSuite) TestNotificationCountsAndMarking() {
	alice := suite.register("alice")
	bob := suite.register("bob")
	carol := suite.register("carol")

	suite.request(http.MethodPut, "/api/v1/users/"+alice.user.ID+"/follow", bob.token, nil)
	suite.request(http.MethodPut, "/api/v1/users/"+alice.user.ID+"/follow", carol.token, nil)

	w := suite.request(http.MethodGet, "/api/v1/notifications/counts", alice.token, nil)
	body := decodeBody(suite.T(), w)
	suite.EqualValues(2, body["unseen"])
	suite.EqualValues(2, body["unread"])

	w = suite.request(http.MethodPost, "/api/v1/notifications/seen", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/notifications/counts", alice.token, nil)
	body = decodeBody(suite.T(), w)
	suite.EqualValues(0, body["unseen"])
	suite.EqualValues(2, body["unread"], "seen does not imply read")

	w = suite.request(http.MethodPost, "/api/v1/notifications/read-all", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/notifications/counts", alice.token, nil)
	body = decodeBody(suite.T(), w)
	suite.EqualValues(0, body["unread"])
}

func (suite *HandlersTestSuite) TestListUserStoriesHidesPrivateFromOthers() {
	alice := suite.register("alice")
	bob := suite.register("bob")
	suite.createStory(alice, "Public Garden", true)
	suite.createStory(alice, "Private Journal", false)

	w := suite.request(http.MethodGet, "/api/v1/users/"+alice.user.ID+"/stories", bob.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	body := decodeBody(suite.T(), w)
	suite.EqualValues(1, body["total"], "others see only public stories")

	w = suite.request(http.MethodGet, "/api/v1/users/"+alice.user.ID+"/stories", alice.token, nil)
	body = decodeBody(suite.T(), w)
	suite.EqualValues(2, body["total"], "owners see their private stories too")
}
