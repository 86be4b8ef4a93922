package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/service"
	"github.com/dom/personal-blog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func validRegistration() service.RegisterInput {
	return service.RegisterInput{
		Name:            "New User",
		Username:        "newuser",
		Email:           "newuser@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	}
}

func TestAuthService_Register(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*service.RegisterInput)
		setup   func()
		wantErr error
	}{
		{name: "successful registration"},
		{
			name:    "missing nickname",
			mutate:  func(in *service.RegisterInput) { in.Name = "  " },
			wantErr: service.ErrMissingFields,
		},
		{
			name:    "password mismatch",
			mutate:  func(in *service.RegisterInput) { in.ConfirmPassword = "different" },
			wantErr: service.ErrPasswordMismatch,
		},
		{
			name: "password too short",
			mutate: func(in *service.RegisterInput) {
				in.Password, in.ConfirmPassword = "short", "short"
			},
			wantErr: service.ErrPasswordTooShort,
		},
		{
			name:    "username with symbols",
			mutate:  func(in *service.RegisterInput) { in.Username = "bad-name!" },
			wantErr: domain.ErrInvalidUsername,
		},
		{
			name:    "username too short",
			mutate:  func(in *service.RegisterInput) { in.Username = "ab" },
			wantErr: domain.ErrInvalidUsername,
		},
		{
			name:    "invalid email",
			mutate:  func(in *service.RegisterInput) { in.Email = "not-an-email" },
			wantErr: domain.ErrInvalidEmail,
		},
		{
			name: "duplicate username",
			setup: func() {
				testutil.NewUserBuilder().WithUsername("newuser").Build(t, f.db)
			},
			wantErr: service.ErrUsernameExists,
		},
		{
			name: "duplicate email",
			mutate: func(in *service.RegisterInput) {
				in.Username = "another"
			},
			setup: func() {
				_, err := f.services.Auth.Register(ctx, validRegistration())
				require.NoError(t, err)
			},
			wantErr: service.ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clean up between tests
			f.testDB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}
			input := validRegistration()
			if tt.mutate != nil {
				tt.mutate(&input)
			}

			user, err := f.services.Auth.Register(ctx, input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "newuser", user.Username)
			assert.Equal(t, domain.RoleUser, user.Role)
			assert.True(t, user.IsActive)
			assert.NotEqual(t, "password123", user.PasswordHash)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, f.db)
	disabled, disabledPassword := testutil.NewUserBuilder().Inactive().Build(t, f.db)

	t.Run("success creates a session", func(t *testing.T) {
		result, err := f.services.Auth.Login(ctx, service.LoginInput{
			Username: user.Username, Password: password, ClientIP: "10.0.0.1",
		})
		require.NoError(t, err)
		assert.Len(t, result.Token, 64)
		assert.NotNil(t, result.User.LastLogin)

		identity, err := f.services.Gate.Resolve(ctx, result.Token)
		require.NoError(t, err)
		require.NotNil(t, identity)
		assert.Equal(t, user.ID, identity.UserID)

		require.NoError(t, f.services.Auth.Logout(ctx, result.Token))
		identity, err = f.services.Gate.Resolve(ctx, result.Token)
		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.services.Auth.Login(ctx, service.LoginInput{Username: user.Username, Password: "wrong"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.services.Auth.Login(ctx, service.LoginInput{Username: "ghost", Password: "whatever"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		_, err := f.services.Auth.Login(ctx, service.LoginInput{Username: disabled.Username, Password: disabledPassword})
		assert.ErrorIs(t, err, service.ErrAccountDisabled)
	})

	t.Run("disabled account with wrong password looks like bad credentials", func(t *testing.T) {
		_, err := f.services.Auth.Login(ctx, service.LoginInput{Username: disabled.Username, Password: "wrong"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("repeated failures are throttled", func(t *testing.T) {
		input := service.LoginInput{Username: user.Username, Password: "wrong", ClientIP: "10.9.9.9"}
		// TestConfig allows three failures per window.
		for i := 0; i < 3; i++ {
			_, err := f.services.Auth.Login(ctx, input)
			require.ErrorIs(t, err, service.ErrInvalidCredentials)
		}

		input.Password = password
		_, err := f.services.Auth.Login(ctx, input)
		assert.ErrorIs(t, err, service.ErrTooManyAttempts)

		input.ClientIP = "10.9.9.10"
		_, err = f.services.Auth.Login(ctx, input)
		assert.NoError(t, err)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, f.db)
	other, _ := testutil.NewUserBuilder().Build(t, f.db)

	updated, err := f.services.Auth.UpdateProfile(ctx, user.ID, service.UpdateProfileInput{
		Name: "Renamed", Username: user.Username, Email: "renamed@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "renamed@example.com", updated.Email)

	_, err = f.services.Auth.UpdateProfile(ctx, user.ID, service.UpdateProfileInput{
		Name: "Renamed", Username: other.Username, Email: "renamed@example.com",
	})
	assert.ErrorIs(t, err, service.ErrUsernameExists)
}

func TestAuthService_CreateAdmin(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	admin, err := f.services.Auth.CreateAdmin(ctx, service.RegisterInput{
		Username: "site_admin", Email: "admin@example.com", Password: "password123",
	}, domain.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, admin.Role)
	assert.Equal(t, "site_admin", admin.Name)

	stored, err := f.repos.User.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, stored.Role)

	_, err = f.services.Auth.CreateAdmin(ctx, service.RegisterInput{
		Username: "plain", Email: "plain@example.com", Password: "password123",
	}, domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
	_, err = f.repos.User.GetByUsername(ctx, "plain")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAuthService_CreateAdminIsSingleInsert(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:reject_updates", func(tx *gorm.DB) {
		_ = tx.AddError(errors.New("updates disabled"))
	}))

	admin, err := f.services.Auth.CreateAdmin(ctx, service.RegisterInput{
		Username: "ops_admin", Email: "ops@example.com", Password: "password123",
	}, domain.RoleAdmin)
	require.NoError(t, err)

	stored, err := f.repos.User.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
}
