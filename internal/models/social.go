package models

import (
	"time"

	"gorm.io/gorm"
)

// Follow is a directed user-follows-user edge.
// The composite unique index makes the edge unique per ordered pair.
type Follow struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	FollowerID  string `gorm:"type:uuid;not null;index:idx_follows_follower;index:idx_follows_pair,unique" json:"follower_id"`
	FollowingID string `gorm:"type:uuid;not null;index:idx_follows_following;index:idx_follows_pair,unique" json:"following_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (Follow) TableName() string { return "follows" }

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

// StoryFollow is a directed user-follows-story edge, independent of
// whether the follower follows the story's author.
type StoryFollow struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	FollowerID string `gorm:"type:uuid;not null;index:idx_story_follows_follower;index:idx_story_follows_pair,unique" json:"follower_id"`
	StoryID    string `gorm:"type:uuid;not null;index:idx_story_follows_story;index:idx_story_follows_pair,unique" json:"story_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (StoryFollow) TableName() string { return "story_follows" }

func (sf *StoryFollow) BeforeCreate(tx *gorm.DB) error {
	if sf.ID == "" {
		sf.ID = generateUUID()
	}
	return nil
}

// NotificationKind is what triggered a notification
type NotificationKind string

const (
	NotificationFollow      NotificationKind = "follow"
	NotificationStoryFollow NotificationKind = "story_follow"
	NotificationNewRecord   NotificationKind = "new_record"
	NotificationComment     NotificationKind = "comment"
)

// Notification is a row in a user's notification panel
type Notification struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"` // recipient
	ActorID string `gorm:"type:uuid;not null" json:"actor_id"`
	Actor   User   `gorm:"foreignKey:ActorID" json:"actor,omitempty"`

	Kind    NotificationKind `gorm:"type:varchar(20);not null" json:"kind"`
	StoryID *string          `gorm:"type:uuid;index" json:"story_id,omitempty"`

	IsRead bool `gorm:"default:false" json:"is_read"`
	IsSeen bool `gorm:"default:false" json:"is_seen"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
