package postgres

import (
	"strings"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

// NewConnection opens Postgres, or SQLite when the URL starts with sqlite://
// (for example sqlite://blog.db or sqlite://file::memory:?cache=shared).
func NewConnection(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	dialector := postgres.Open(databaseURL)
	if strings.HasPrefix(databaseURL, sqlitePrefix) {
		dialector = sqlite.Open(strings.TrimPrefix(databaseURL, sqlitePrefix))
	}

	db, err := gorm.Open(dialector, Config(logLevel))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Config is shared by every dialect so that timestamps are always written in
// UTC; view and session expiry comparisons depend on it.
func Config(logLevel logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.ViewRecord{},
		&domain.PostStats{},
		&domain.SiteStats{},
		&domain.Post{},
		&domain.Comment{},
		&domain.PostLike{},
		&domain.Follow{},
		&domain.Notification{},
		&domain.ChatMessage{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:         NewUserRepository(db),
		Session:      NewSessionRepository(db),
		ViewRecord:   NewViewRecordRepository(db),
		Stats:        NewStatsRepository(db),
		Post:         NewPostRepository(db),
		Comment:      NewCommentRepository(db),
		Like:         NewLikeRepository(db),
		Follow:       NewFollowRepository(db),
		Notification: NewNotificationRepository(db),
		Chat:         NewChatRepository(db),
	}
}
