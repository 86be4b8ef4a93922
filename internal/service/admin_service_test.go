package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/service"
	"github.com/dom/personal-blog/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rolePtr(r domain.Role) *domain.Role { return &r }
func boolPtr(b bool) *bool               { return &b }

func TestAdminService_UpdateUser(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	super, _ := testutil.NewUserBuilder().WithRole(domain.RoleSuperAdmin).Build(t, f.db)
	admin, _ := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).Build(t, f.db)
	named, _ := testutil.NewUserBuilder().WithUsername("admin").WithRole(domain.RoleAdmin).Build(t, f.db)
	target, _ := testutil.NewUserBuilder().Build(t, f.db)

	tests := []struct {
		name     string
		actor    *domain.User
		input    service.UpdateUserInput
		wantErr  error
		wantRole domain.Role
		active   bool
	}{
		{name: "nothing to update", actor: super, input: service.UpdateUserInput{UserID: target.ID}, wantErr: service.ErrNothingToUpdate},
		{name: "self", actor: admin, input: service.UpdateUserInput{UserID: admin.ID, IsActive: boolPtr(false)}, wantErr: service.ErrCannotModifySelf},
		{name: "role by plain admin", actor: admin, input: service.UpdateUserInput{UserID: target.ID, Role: rolePtr(domain.RoleAdmin)}, wantErr: domain.ErrForbidden},
		{name: "super admin role is not assignable", actor: super, input: service.UpdateUserInput{UserID: target.ID, Role: rolePtr(domain.RoleSuperAdmin)}, wantErr: domain.ErrInvalidRole},
		{name: "unknown user", actor: super, input: service.UpdateUserInput{UserID: uuid.New(), IsActive: boolPtr(false)}, wantErr: service.ErrUserNotFound},
		{name: "plain admin deactivates", actor: admin, input: service.UpdateUserInput{UserID: target.ID, IsActive: boolPtr(false)}, wantRole: domain.RoleUser, active: false},
		{name: "super admin promotes and reactivates", actor: super, input: service.UpdateUserInput{UserID: target.ID, Role: rolePtr(domain.RoleAdmin), IsActive: boolPtr(true)}, wantRole: domain.RoleAdmin, active: true},
		{name: "configured super username assigns roles", actor: named, input: service.UpdateUserInput{UserID: target.ID, Role: rolePtr(domain.RoleUser)}, wantRole: domain.RoleUser, active: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := f.services.Admin.UpdateUser(ctx, identityOf(tt.actor), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, user.Role)
			assert.Equal(t, tt.active, user.IsActive)

			stored, err := f.repos.User.GetByID(ctx, target.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, stored.Role)
			assert.Equal(t, tt.active, stored.IsActive)
		})
	}
}

func TestAdminService_DeleteUser(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	super, _ := testutil.NewUserBuilder().WithRole(domain.RoleSuperAdmin).Build(t, f.db)
	admin, _ := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).Build(t, f.db)
	target, token := testutil.NewUserBuilder().BuildWithSession(t, f.db, service.HashToken)

	assert.ErrorIs(t, f.services.Admin.DeleteUser(ctx, identityOf(admin), target.ID), domain.ErrForbidden)
	assert.ErrorIs(t, f.services.Admin.DeleteUser(ctx, identityOf(super), super.ID), service.ErrCannotModifySelf)
	assert.ErrorIs(t, f.services.Admin.DeleteUser(ctx, identityOf(super), uuid.New()), service.ErrUserNotFound)

	require.NoError(t, f.services.Admin.DeleteUser(ctx, identityOf(super), target.ID))

	identity, err := f.services.Gate.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, identity, "sessions of a deleted user no longer resolve")

	users, err := f.services.Admin.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3, "deleted users stay visible to admins")
}

func TestAdminService_ListPostsAndSync(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	author, _ := testutil.NewUserBuilder().Build(t, f.db)
	admin, _ := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).Build(t, f.db)

	busy := testutil.NewPostBuilder().WithSlug("busy").Build(t, f.db, author)
	testutil.NewPostBuilder().WithSlug("quiet").WithStatus(domain.PostStatusDraft).Build(t, f.db, author)
	gone := testutil.NewPostBuilder().WithSlug("gone").Build(t, f.db, author)

	_, err := f.services.Comments.Create(ctx, identityOf(admin), "busy", service.CreateCommentInput{Content: "first"})
	require.NoError(t, err)
	require.NoError(t, f.services.Admin.DeletePost(ctx, gone.ID))

	posts, err := f.services.Admin.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	bySlug := map[string]*service.AdminPost{}
	for _, p := range posts {
		bySlug[p.Slug] = p
	}
	require.Contains(t, bySlug, "busy")
	assert.Equal(t, busy.ID, bySlug["busy"].ID)
	assert.Equal(t, int64(1), bySlug["busy"].Stats.CommentCount)
	require.Contains(t, bySlug, "quiet")
	assert.Equal(t, int64(0), bySlug["quiet"].Stats.CommentCount)

	// Drift the counters: one stale row and one missing row.
	require.NoError(t, f.repos.Stats.SetCommentCount(ctx, "quiet", 7, time.Now()))
	require.NoError(t, f.repos.Stats.SetCommentCount(ctx, "busy", 4, time.Now()))
	require.NoError(t, f.repos.Comment.Create(ctx, &domain.Comment{
		PostSlug: "fresh", UserID: author.ID, Content: "hi", IsApproved: true,
	}))

	result, err := f.services.Admin.SyncComments(ctx)
	require.NoError(t, err)
	assert.Equal(t, service.SyncResult{Created: 1, Updated: 1, Reset: 1}, *result)

	for slug, want := range map[string]int64{"busy": 1, "quiet": 0, "fresh": 1} {
		stats, err := f.services.Stats.GetPostStats(ctx, slug)
		require.NoError(t, err)
		assert.Equal(t, want, stats.CommentCount, slug)
	}

	again, err := f.services.Admin.SyncComments(ctx)
	require.NoError(t, err)
	assert.Equal(t, service.SyncResult{}, *again)
}
