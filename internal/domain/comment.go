package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	PostSlug   string     `json:"postSlug" gorm:"size:255;not null;index"`
	UserID     uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	ParentID   *uuid.UUID `json:"parentId" gorm:"type:uuid;index"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	IsApproved bool       `json:"isApproved" gorm:"not null"`
	CreatedAt  time.Time  `json:"createdAt"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CommentCount is the number of visible comments on one post.
type CommentCount struct {
	PostSlug string
	Count    int64
}

type PostLike struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PostSlug  string    `json:"postSlug" gorm:"size:255;not null;uniqueIndex:idx_post_likes_slug_user"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_post_likes_slug_user"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l *PostLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type Follow struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	FollowerID  uuid.UUID `json:"followerId" gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair"`
	FollowingID uuid.UUID `json:"followingId" gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair;index"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
