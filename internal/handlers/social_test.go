package handlers

import (
	"net/http"

	"github.com/connectos/backend/internal/models"
)

func (suite *HandlersTestSuite) TestFollowUserLifecycle() {
	alice := suite.register("alice")
	bob := suite.register("bob")

	w := suite.request(http.MethodPut, "/api/v1/users/"+bob.user.ID+"/follow", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	body := decodeBody(suite.T(), w)
	suite.Equal(true, body["following"])
	suite.Equal(true, body["changed"])

	// Repeating the follow is a no-op, not an error.
	w = suite.request(http.MethodPut, "/api/v1/users/"+bob.user.ID+"/follow", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	body = decodeBody(suite.T(), w)
	suite.Equal(true, body["following"])
	suite.Equal(false, body["changed"])

	var cnt int64
	suite.db.Model(&models.Follow{}).Count(&cnt)
	suite.EqualValues(1, cnt)

	w = suite.request(http.MethodDelete, "/api/v1/users/"+bob.user.ID+"/follow", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	body = decodeBody(suite.T(), w)
	suite.Equal(false, body["following"])
	suite.Equal(true, body["changed"])

	suite.db.Model(&models.Follow{}).Count(&cnt)
	suite.EqualValues(0, cnt)
}

func (suite *HandlersTestSuite) TestToggleFollowIsSymmetric() {
	alice := suite.register("alice")
	bob := suite.register("bob")

	w := suite.request(http.MethodPost, "/api/v1/users/"+bob.user.ID+"/follow/toggle", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(true, decodeBody(suite.T(), w)["following"])

	w = suite.request(http.MethodPost, "/api/v1/users/"+bob.user.ID+"/follow/toggle", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(false, decodeBody(suite.T(), w)["following"])

	var cnt int64
	suite.db.Model(&models.Follow{}).Count(&cnt)
	suite.EqualValues(0, cnt, "two toggles return to the starting state")
}

func (suite *HandlersTestSuite) TestSelfFollowRejected() {
	alice := suite.register("alice")

	w := suite.request(http.MethodPut, "/api/v1/users/"+alice.user.ID+"/follow", alice.token, nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("INVALID_TARGET", decodeBody(suite.T(), w)["code"])

	var cnt int64
	suite.db.Model(&models.Follow{}).Count(&cnt)
	suite.EqualValues(0, cnt)
}

func (suite *HandlersTestSuite) TestFollowUnknownUser() {
	alice := suite.register("alice")
	w := suite.request(http.MethodPut, "/api/v1/users/no-such-user/follow", alice.token, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestFollowCountsMaintained() {
	alice := suite.register("alice")
	bob := suite.register("bob")

	suite.request(http.MethodPut, "/api/v1/users/"+bob.user.ID+"/follow", alice.token, nil)

	var aliceRow, bobRow models.User
	suite.db.First(&aliceRow, "id = ?", alice.user.ID)
	suite.db.First(&bobRow, "id = ?", bob.user.ID)
	suite.Equal(1, aliceRow.FollowingCount)
	suite.Equal(1, bobRow.FollowerCount)

	suite.request(http.MethodDelete, "/api/v1/users/"+bob.user.ID+"/follow", alice.token, nil)
	suite.db.First(&aliceRow, "id = ?", alice.user.ID)
	suite.db.First(&bobRow, "id = ?", bob.user.ID)
	suite.Equal(0, aliceRow.FollowingCount)
	suite.Equal(0, bobRow.FollowerCount)
}

func (suite *HandlersTestSuite) TestFollowCreatesNotification() {
	alice := suite.register("alice")
	bob := suite.register("bob")

	suite.request(http.MethodPut, "/api/v1/users/"+bob.user.ID+"/follow", alice.token, nil)

	var notif models.Notification
	err := suite.db.First(&notif, "user_id = ?", bob.user.ID).Error
	suite.Require().NoError(err)
	suite.Equal(alice.user.ID, notif.ActorID)
	suite.Equal(models.NotificationFollow, notif.Kind)

	// Re-following later must not duplicate the notification.
	suite.request(http.MethodDelete, "/api/v1/users/"+bob.user.ID+"/follow", alice.token, nil)
	suite.request(http.MethodPut, "/api/v1/users/"+bob.user.ID+"/follow", alice.token, nil)
	var cnt int64
	suite.db.Model(&models.Notification{}).Where("user_id = ?", bob.user.ID).Count(&cnt)
	suite.EqualValues(2, cnt)
}

func (suite *HandlersTestSuite) TestFollowOwnStoryRejected() {
	alice := suite.register("alice")
	story := suite.createStory(alice, "My Story", true)

	w := suite.request(http.MethodPut, "/api/v1/stories/"+story.ID+"/follow", alice.token, nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("INVALID_TARGET", decodeBody(suite.T(), w)["code"])
}

func (suite *HandlersTestSuite) TestStoryFollowLifecycle() {
	alice := suite.register("alice")
	bob := suite.register("bob")
	story := suite.createStory(bob, "Bob's Boat", true)

	w := suite.request(http.MethodPut, "/api/v1/stories/"+story.ID+"/follow", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(true, decodeBody(suite.T(), w)["following"])

	// The owner gets a story-follow notification.
	var notif models.Notification
	suite.Require().NoError(suite.db.First(&notif, "user_id = ?", bob.user.ID).Error)
	suite.Equal(models.NotificationStoryFollow, notif.Kind)
	suite.Require().NotNil(notif.StoryID)
	suite.Equal(story.ID, *notif.StoryID)

	w = suite.request(http.MethodPost, "/api/v1/stories/"+story.ID+"/follow/toggle", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(false, decodeBody(suite.T(), w)["following"])
}

func (suite *HandlersTestSuite) TestFollowMutationInvalidatesFeedCache() {
	alice := suite.register("alice")
	bob := suite.register("bob")
	suite.createStory(bob, "Bob's Garden", true)

	// Prime the cache: alice follows nobody, feed is empty.
	w := suite.request(http.MethodGet, "/api/v1/feed", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.EqualValues(0, decodeBody(suite.T(), w)["total"])

	// Following bob must take effect immediately despite the TTL.
	suite.request(http.MethodPut, "/api/v1/users/"+bob.user.ID+"/follow", alice.token, nil)
	w = suite.request(http.MethodGet, "/api/v1/feed", alice.token, nil)
	suite.EqualValues(1, decodeBody(suite.T(), w)["total"])

	// Unfollowing invalidates again.
	suite.request(http.MethodDelete, "/api/v1/users/"+bob.user.ID+"/follow", alice.token, nil)
	w = suite.request(http.MethodGet, "/api/v1/feed", alice.token, nil)
	suite.EqualValues(0, decodeBody(suite.T(), w)["total"])
}

func (suite *HandlersTestSuite) TestFollowersAndFollowingLists() {
	alice := suite.register("alice")
	bob := suite.register("bob")
	carol := suite.register("carol")

	suite.request(http.MethodPut, "/api/v1/users/"+bob.user.ID+"/follow", alice.token, nil)
	suite.request(http.MethodPut, "/api/v1/users/"+bob.user.ID+"/follow", carol.token, nil)

	w := suite.request(http.MethodGet, "/api/v1/users/"+bob.user.ID+"/followers", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.EqualValues(2, decodeBody(suite.T(), w)["total"])

	w = suite.request(http.MethodGet, "/api/v1/users/"+alice.user.ID+"/following", alice.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.EqualValues(1, decodeBody(suite.T(), w)["total"])
}
