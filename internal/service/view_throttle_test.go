package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/logging"
	"github.com/dom/personal-blog/internal/repository/postgres"
	"github.com/dom/personal-blog/internal/service"
	"github.com/dom/personal-blog/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newThrottle(t *testing.T) *service.ViewThrottle {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	return service.NewViewThrottle(
		postgres.NewViewRecordRepository(testDB.DB),
		service.DefaultViewCooldown,
		service.DefaultViewCap,
		logging.Discard(),
	)
}

func TestViewThrottle_Cap(t *testing.T) {
	throttle := newThrottle(t)
	ctx := context.Background()
	visitor := domain.UserVisitor(uuid.New())
	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	accepted := 0
	for i := 0; i < 10; i++ {
		if throttle.ShouldCount(ctx, "capped", visitor, start.Add(time.Duration(i)*11*time.Second)) {
			accepted++
		}
	}
	assert.Equal(t, 5, accepted)
}

func TestViewThrottle_Cooldown(t *testing.T) {
	tests := []struct {
		name         string
		gap          time.Duration
		wantAccepted int
	}{
		{name: "nine seconds apart", gap: 9 * time.Second, wantAccepted: 1},
		{name: "eleven seconds apart", gap: 11 * time.Second, wantAccepted: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			throttle := newThrottle(t)
			ctx := context.Background()
			visitor := domain.IPVisitor("192.0.2.10")
			start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

			accepted := 0
			for _, at := range []time.Time{start, start.Add(tt.gap)} {
				if throttle.ShouldCount(ctx, "cooldown", visitor, at) {
					accepted++
				}
			}
			assert.Equal(t, tt.wantAccepted, accepted)
		})
	}
}

func TestViewThrottle_VisitorIsolation(t *testing.T) {
	throttle := newThrottle(t)
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	first := domain.UserVisitor(uuid.New())
	others := []domain.VisitorKey{
		domain.UserVisitor(uuid.New()),
		domain.IPVisitor("9.9.9.9"),
	}

	for i := 0; i < service.DefaultViewCap; i++ {
		assert.True(t, throttle.ShouldCount(ctx, "shared", first, start.Add(time.Duration(i)*time.Minute)))
	}
	assert.False(t, throttle.ShouldCount(ctx, "shared", first, start.Add(time.Hour)))

	for _, visitor := range others {
		assert.True(t, throttle.ShouldCount(ctx, "shared", visitor, start.Add(time.Hour)), "visitor %s", visitor)
	}
}

type failingViewRecords struct{}

func (failingViewRecords) RecordView(context.Context, string, domain.VisitorKey, time.Time, time.Duration, int) (bool, error) {
	return false, errors.New("database is down")
}

func (failingViewRecords) Get(context.Context, string, domain.VisitorKey) (*domain.ViewRecord, error) {
	return nil, errors.New("database is down")
}

func TestViewThrottle_FailsClosed(t *testing.T) {
	throttle := service.NewViewThrottle(failingViewRecords{}, 0, 0, logging.Discard())

	assert.False(t, throttle.ShouldCount(context.Background(), "slug", domain.IPVisitor("1.2.3.4"), time.Now()))
}
