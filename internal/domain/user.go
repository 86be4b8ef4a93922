package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type User struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Username       string         `json:"username" gorm:"uniqueIndex;size:32;not null"`
	Name           string         `json:"name" gorm:"size:64;not null"`
	Email          string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string         `json:"-" gorm:"not null"`
	Role           Role           `json:"role" gorm:"size:16;not null"`
	IsActive       bool           `json:"isActive" gorm:"not null"`
	FollowersCount int            `json:"followersCount" gorm:"not null"`
	FollowingCount int            `json:"followingCount" gorm:"not null"`
	LastLogin      *time.Time     `json:"lastLogin"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName falls back to the username when no nickname is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

type UserSession struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	TokenHash string    `json:"-" gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *UserSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
