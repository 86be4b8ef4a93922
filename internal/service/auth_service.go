package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrTooManyAttempts    = errors.New("too many failed login attempts, try again later")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingFields      = errors.New("all fields are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
)

const (
	minPasswordLength = 6
	sessionTokenBytes = 32
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	guard       *LoginGuard
	hash        TokenHasher
	sessionTTL  time.Duration
	now         func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, guard *LoginGuard, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		guard:       guard,
		hash:        HashToken,
		sessionTTL:  cfg.SessionTTL,
		now:         time.Now,
	}
}

type RegisterInput struct {
	Name            string
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

type LoginInput struct {
	Username string
	Password string
	ClientIP string
}

type UpdateProfileInput struct {
	Name     string
	Username string
	Email    string
}

type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	return s.createUser(ctx, input, domain.RoleUser)
}

func (s *AuthService) createUser(ctx context.Context, input RegisterInput, role domain.Role) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if input.Name == "" || input.Username == "" || input.Email == "" || input.Password == "" || input.ConfirmPassword == "" {
		return nil, ErrMissingFields
	}
	if input.Password != input.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if err := s.checkIdentityFields(ctx, input.Username, input.Email, uuid.Nil); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     input.Username,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if input.Username == "" || input.Password == "" {
		return nil, ErrMissingFields
	}
	if s.guard.Blocked(ctx, input.Username, input.ClientIP) {
		return nil, ErrTooManyAttempts
	}

	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.guard.RecordFailure(ctx, input.Username, input.ClientIP)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.guard.RecordFailure(ctx, input.Username, input.ClientIP)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &domain.UserSession{
		UserID:    user.ID,
		TokenHash: s.hash(token),
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	lastLogin := now.UTC()
	user.LastLogin = &lastLogin

	s.guard.Reset(ctx, input.Username, input.ClientIP)

	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout removes the session behind the token, if any.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	return s.sessionRepo.DeleteByTokenHash(ctx, s.hash(rawToken))
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if input.Name == "" || input.Username == "" || input.Email == "" {
		return nil, ErrMissingFields
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.checkIdentityFields(ctx, input.Username, input.Email, user.ID); err != nil {
		return nil, err
	}

	user.Name = input.Name
	user.Username = input.Username
	user.Email = input.Email
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAdmin provisions an administrator directly, bypassing registration.
func (s *AuthService) CreateAdmin(ctx context.Context, input RegisterInput, role domain.Role) (*domain.User, error) {
	if role != domain.RoleAdmin && role != domain.RoleSuperAdmin {
		return nil, domain.ErrInvalidRole
	}
	input.ConfirmPassword = input.Password
	if input.Name == "" {
		input.Name = input.Username
	}
	return s.createUser(ctx, input, role)
}

// PurgeExpiredSessions deletes sessions that can no longer authenticate.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, s.now())
}

func (s *AuthService) checkIdentityFields(ctx context.Context, username, email string, exceptID uuid.UUID) error {
	if !usernamePattern.MatchString(username) {
		return domain.ErrInvalidUsername
	}
	if !emailPattern.MatchString(email) {
		return domain.ErrInvalidEmail
	}

	taken, err := s.userRepo.UsernameTaken(ctx, username, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameExists
	}

	taken, err = s.userRepo.EmailTaken(ctx, email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailExists
	}
	return nil
}

// GenerateSessionToken returns 32 random bytes, hex encoded.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
