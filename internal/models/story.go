package models

import (
	"time"

	"gorm.io/gorm"
)

// StoryType categorizes what a story is attached to
type StoryType string

const (
	StoryTypeObject StoryType = "object"
	StoryTypePerson StoryType = "person"
	StoryTypeSpace  StoryType = "space"
	StoryTypeEvent  StoryType = "event"
	StoryTypeOther  StoryType = "other"
)

// ValidStoryType reports whether t is one of the known story types
func ValidStoryType(t StoryType) bool {
	switch t {
	case StoryTypeObject, StoryTypePerson, StoryTypeSpace, StoryTypeEvent, StoryTypeOther:
		return true
	}
	return false
}

// Location is an optional city/state/country triple; all fields optional
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// Story is a chronological digital story attached to an object, person,
// space or event. Owned by exactly one user; contains zero or more Records.
type Story struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Name        string    `gorm:"not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	StoryType   StoryType `gorm:"type:varchar(20);not null;default:other" json:"story_type"`
	IsPublic    bool      `gorm:"default:true" json:"is_public"`

	Location *Location `gorm:"type:jsonb;serializer:json" json:"location,omitempty"`

	CoverImageURL string `json:"cover_image_url,omitempty"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`

	// Derived from Records; monotonically non-decreasing
	RecordCount    int64     `gorm:"default:0" json:"record_count"`
	LastActivityAt time.Time `gorm:"not null;index" json:"last_activity_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	if s.LastActivityAt.IsZero() {
		s.LastActivityAt = time.Now().UTC()
	}
	return nil
}

// MediaKind is the type of a media reference on a record
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindAudio MediaKind = "audio"
	MediaKindVideo MediaKind = "video"
)

// MediaRef points at an already-uploaded media object. Upload itself is
// handled by the object store, not this service.
type MediaRef struct {
	ID   string    `json:"id"`
	URL  string    `json:"url"`
	Kind MediaKind `json:"kind"`
	Name string    `json:"name,omitempty"`
}

// MediaRefs is stored as a jsonb array on the record row
type MediaRefs []MediaRef

// Record is a single dated entry on a Story's timeline. Records are
// append-only: there is no update or delete path.
type Record struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	StoryID string `gorm:"not null;index" json:"story_id"`
	Story   Story  `gorm:"foreignKey:StoryID" json:"-"`

	Title       string  `gorm:"not null" json:"title"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	IsPublic    bool    `gorm:"default:true" json:"is_public"`

	Location *Location `gorm:"type:jsonb;serializer:json" json:"location,omitempty"`
	Media    MediaRefs `gorm:"type:jsonb;serializer:json" json:"media,omitempty"`

	// When the recorded moment happened, as opposed to when the row was written
	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	if r.OccurredAt.IsZero() {
		r.OccurredAt = time.Now().UTC()
	}
	return nil
}

// Comment is a user comment on a story
type Comment struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	StoryID string `gorm:"not null;index" json:"story_id"`
	Story   Story  `gorm:"foreignKey:StoryID" json:"-"`
	UserID  string `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Body string `gorm:"type:text;not null" json:"body"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}
