package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/personal-blog/internal/api/middleware"
	"github.com/dom/personal-blog/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every UserBuilder account starts with.
const DefaultPassword = "testpassword123"

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	name     string
	email    string
	password string
	role     domain.Role
	inactive bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: "user_" + suffix,
		name:     "Test User " + suffix,
		email:    fmt.Sprintf("user_%s@example.com", suffix),
		password: DefaultPassword,
		role:     domain.RoleUser,
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithRole(role domain.Role) *UserBuilder {
	b.role = role
	return b
}

// Inactive creates the account already deactivated.
func (b *UserBuilder) Inactive() *UserBuilder {
	b.inactive = true
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	// MinCost keeps suites fast; production uses DefaultCost.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     b.username,
		Name:         b.name,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		Role:         b.role,
		IsActive:     true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	// gorm skips zero values on create, so deactivate separately.
	if b.inactive {
		if err := db.Model(user).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate user: %v", err)
		}
		user.IsActive = false
	}

	return user, b.password
}

// BuildWithSession creates the user plus a live session row and returns the
// raw session token.
func (b *UserBuilder) BuildWithSession(t *testing.T, db *gorm.DB, hash func(string) string) (*domain.User, string) {
	t.Helper()

	user, _ := b.Build(t, db)
	token := uuid.NewString()
	session := &domain.UserSession{
		UserID:    user.ID,
		TokenHash: hash(token),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return user, token
}

// BuildAndLogin creates the user directly and signs in through the API,
// returning the session token from the cookie.
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)
	return user, LoginAs(t, ts, user.Username, password)
}

// LoginAs signs in through the API and returns the session token.
func LoginAs(t *testing.T, ts *TestServer, username, password string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %d", resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.SessionCookieName && cookie.Value != "" {
			return cookie.Value
		}
	}
	t.Fatal("login response did not set a session cookie")
	return ""
}

// PostBuilder creates posts directly in the database.
type PostBuilder struct {
	title   string
	slug    string
	content string
	status  domain.PostStatus
}

func NewPostBuilder() *PostBuilder {
	suffix := uuid.New().String()[:8]
	return &PostBuilder{
		title:   "Post " + suffix,
		slug:    "post-" + suffix,
		content: "Some content for " + suffix,
		status:  domain.PostStatusPublished,
	}
}

func (b *PostBuilder) WithSlug(slug string) *PostBuilder {
	b.slug = slug
	return b
}

func (b *PostBuilder) WithStatus(status domain.PostStatus) *PostBuilder {
	b.status = status
	return b
}

func (b *PostBuilder) Build(t *testing.T, db *gorm.DB, author *domain.User) *domain.Post {
	t.Helper()

	post := &domain.Post{
		Title:    b.title,
		Slug:     b.slug,
		Content:  b.content,
		Excerpt:  b.content,
		Status:   b.status,
		AuthorID: author.ID,
	}
	if b.status == domain.PostStatusPublished {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}
	if err := db.Omit("Author").Create(post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	return post
}

// CreateAuthenticatedRequest builds a JSON request carrying a bearer token.
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// Do sends a request built by CreateAuthenticatedRequest.
func Do(t *testing.T, method, url string, body interface{}, token string) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(CreateAuthenticatedRequest(t, method, url, body, token))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
