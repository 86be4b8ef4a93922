package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dom/personal-blog/internal/api"
	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/logging"
	"github.com/dom/personal-blog/internal/repository"
	repoPostgres "github.com/dom/personal-blog/internal/repository/postgres"
	"github.com/dom/personal-blog/internal/service"
	"github.com/dom/personal-blog/internal/websocket"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresEnv switches NewTestDB from in-memory SQLite to a disposable
// PostgreSQL container.
const PostgresEnv = "BLOG_TEST_POSTGRES"

// TestDB is a migrated database private to one test.
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB returns a fresh in-memory SQLite database, or a PostgreSQL
// testcontainer when BLOG_TEST_POSTGRES=1.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	var testDB *TestDB
	if os.Getenv(PostgresEnv) == "1" {
		testDB = newPostgresDB(t)
	} else {
		testDB = newSQLiteDB(t)
	}

	if err := repoPostgres.Migrate(testDB.DB); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})
	return testDB
}

func newSQLiteDB(t *testing.T) *TestDB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_busy_timeout=5000", name, uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), repoPostgres.Config(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	// A shared-cache memory database lives as long as one connection does;
	// a single connection also keeps writes serialized.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &TestDB{DB: db, DSN: dsn}
}

func newPostgresDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_personal_blog"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), repoPostgres.Config(logger.Silent))
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	return &TestDB{Container: container, DB: db, DSN: dsn}
}

// Cleanup closes the connection and terminates the container, if any.
func (tdb *TestDB) Cleanup() {
	if sqlDB, err := tdb.DB.DB(); err == nil {
		sqlDB.Close()
	}
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"chat_messages",
		"notifications",
		"follows",
		"post_likes",
		"comments",
		"user_posts",
		"site_stats",
		"post_stats",
		"view_records",
		"user_sessions",
		"users",
	}

	for _, table := range tables {
		stmt := "DELETE FROM " + table
		if tdb.Container != nil {
			stmt = fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)
		}
		if err := tdb.DB.Exec(stmt).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0", // Random port
		Environment:        "test",
		LogLevel:           "error",
		DisplayLocation:    time.FixedZone("CST", 8*60*60),
		SessionTTL:         time.Hour,
		CookieSecure:       false, // httptest serves plain HTTP
		SuperUsername:      "admin",
		ViewCooldown:       10 * time.Second,
		ViewCap:            5,
		LoginMaxFailures:   3,
		LoginFailureWindow: time.Minute,
		AllowedOrigins:     []string{"http://localhost:3000"},
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies. Options
// may adjust the configuration before anything is wired.
func NewTestServer(t *testing.T, opts ...func(*config.Config)) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	log := logging.Discard()

	repos := repoPostgres.NewRepositories(testDB.DB)
	hub := websocket.NewHub(log)
	go hub.Run()

	store := service.NewMemoryFailureStore()
	guard := service.NewLoginGuard(store, cfg.LoginMaxFailures, cfg.LoginFailureWindow, log)

	services := service.NewServices(repos, cfg, guard, hub, log)
	router := api.NewRouter(services, hub, cfg, log)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
		store.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}

// WebSocketURL returns the chat feed URL for a room
func (ts *TestServer) WebSocketURL(roomID string) string {
	wsURL := "ws" + strings.TrimPrefix(ts.Server.URL, "http")
	return fmt.Sprintf("%s/api/chat/ws?roomId=%s", wsURL, roomID)
}
