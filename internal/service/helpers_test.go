package service_test

import (
	"sync"
	"testing"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/logging"
	"github.com/dom/personal-blog/internal/repository"
	"github.com/dom/personal-blog/internal/repository/postgres"
	"github.com/dom/personal-blog/internal/service"
	"github.com/dom/personal-blog/internal/testutil"
	"gorm.io/gorm"
)

// recordingBroadcaster captures chat events instead of delivering them.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []domain.ChatEvent
}

func (b *recordingBroadcaster) Broadcast(event domain.ChatEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) Events() []domain.ChatEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.ChatEvent(nil), b.events...)
}

type serviceFixture struct {
	db          *gorm.DB
	testDB      *testutil.TestDB
	repos       *repository.Repositories
	services    *service.Services
	broadcaster *recordingBroadcaster
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	log := logging.Discard()

	store := service.NewMemoryFailureStore()
	t.Cleanup(store.Stop)
	guard := service.NewLoginGuard(store, cfg.LoginMaxFailures, cfg.LoginFailureWindow, log)

	broadcaster := &recordingBroadcaster{}
	return &serviceFixture{
		db:          testDB.DB,
		testDB:      testDB,
		repos:       repos,
		services:    service.NewServices(repos, cfg, guard, broadcaster, log),
		broadcaster: broadcaster,
	}
}

func identityOf(user *domain.User) *domain.Identity {
	return &domain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
	}
}
