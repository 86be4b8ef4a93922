package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/personal-blog/internal/repository/postgres"
	"github.com/dom/personal-blog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_KeepsCountersInStep(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	alice, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	counts := func() (int, int) {
		a, err := repos.User.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		b, err := repos.User.GetByID(ctx, bob.ID)
		require.NoError(t, err)
		return a.FollowingCount, b.FollowersCount
	}

	steps := []struct {
		name          string
		follow        bool
		wantChanged   bool
		wantFollowing bool
		wantCount     int
	}{
		{name: "follow", follow: true, wantChanged: true, wantFollowing: true, wantCount: 1},
		{name: "follow twice is a no-op", follow: true, wantChanged: false, wantFollowing: true, wantCount: 1},
		{name: "unfollow", follow: false, wantChanged: true, wantFollowing: false, wantCount: 0},
		{name: "unfollow twice is a no-op", follow: false, wantChanged: false, wantFollowing: false, wantCount: 0},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			var changed bool
			var err error
			if step.follow {
				changed, err = repos.Follow.Follow(ctx, alice.ID, bob.ID)
			} else {
				changed, err = repos.Follow.Unfollow(ctx, alice.ID, bob.ID)
			}
			require.NoError(t, err)
			assert.Equal(t, step.wantChanged, changed)

			following, err := repos.Follow.IsFollowing(ctx, alice.ID, bob.ID)
			require.NoError(t, err)
			assert.Equal(t, step.wantFollowing, following)

			followingCount, followersCount := counts()
			assert.Equal(t, step.wantCount, followingCount)
			assert.Equal(t, step.wantCount, followersCount)
		})
	}
}
