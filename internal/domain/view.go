package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisitorKey identifies who is viewing content: a user id when logged in,
// otherwise the caller's IP. The two forms never collide.
type VisitorKey string

const unknownVisitorIP = "unknown"

func UserVisitor(id uuid.UUID) VisitorKey {
	return VisitorKey("user:" + id.String())
}

func IPVisitor(ip string) VisitorKey {
	if ip == "" {
		ip = unknownVisitorIP
	}
	return VisitorKey("ip:" + ip)
}

// ViewRecord tracks accepted views of one content item by one visitor.
type ViewRecord struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ContentSlug  string     `json:"contentSlug" gorm:"size:255;not null;uniqueIndex:idx_view_records_slug_visitor"`
	VisitorKey   VisitorKey `json:"visitorKey" gorm:"size:128;not null;uniqueIndex:idx_view_records_slug_visitor"`
	ViewCount    int        `json:"viewCount" gorm:"not null"`
	LastViewedAt time.Time  `json:"lastViewedAt" gorm:"not null"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (v *ViewRecord) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type PostStats struct {
	PostSlug     string    `json:"post_slug" gorm:"primaryKey;size:255"`
	ViewCount    int64     `json:"view_count" gorm:"not null"`
	CommentCount int64     `json:"comment_count" gorm:"not null"`
	LikeCount    int64     `json:"like_count" gorm:"not null"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SiteStatsID is the primary key of the single site-wide counters row.
const SiteStatsID = 1

type SiteStats struct {
	ID             int       `json:"-" gorm:"primaryKey;autoIncrement:false"`
	TotalVisits    int64     `json:"total_visits" gorm:"not null"`
	TotalComments  int64     `json:"total_comments" gorm:"not null"`
	TotalLikes     int64     `json:"total_likes" gorm:"not null"`
	TotalUserPosts int64     `json:"total_user_posts" gorm:"not null"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type SiteStatsCounter string

const (
	CounterVisits    SiteStatsCounter = "total_visits"
	CounterComments  SiteStatsCounter = "total_comments"
	CounterLikes     SiteStatsCounter = "total_likes"
	CounterUserPosts SiteStatsCounter = "total_user_posts"
)

type PostStatsCounter string

const (
	CounterPostViews    PostStatsCounter = "view_count"
	CounterPostComments PostStatsCounter = "comment_count"
	CounterPostLikes    PostStatsCounter = "like_count"
)
