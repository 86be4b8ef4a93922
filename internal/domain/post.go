package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusDeleted   PostStatus = "deleted"
)

func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusDeleted:
		return true
	}
	return false
}

type Post struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Content     string     `json:"content" gorm:"type:text;not null"`
	Excerpt     string     `json:"excerpt" gorm:"type:text"`
	AuthorID    uuid.UUID  `json:"authorId" gorm:"type:uuid;not null;index"`
	Status      PostStatus `json:"status" gorm:"size:16;not null;index"`
	IsOfficial  bool       `json:"isOfficial" gorm:"not null"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Relations
	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

func (Post) TableName() string {
	return "user_posts"
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PostFilter narrows post listings. A nil AuthorID lists every author.
type PostFilter struct {
	Status   PostStatus
	AuthorID *uuid.UUID
	Limit    int
	Offset   int
}
