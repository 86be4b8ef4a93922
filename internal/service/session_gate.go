package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/repository"
	"gorm.io/gorm"
)

var ErrSessionLookupFailed = errors.New("session lookup failed")

// TokenHasher maps a raw session token to the digest stored in the database.
type TokenHasher func(rawToken string) string

// HashToken is the SHA-256 hex digest of the raw token.
func HashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// SessionGate turns a raw session token into a verified Identity. It never
// writes, so calling it any number of times has no side effects.
type SessionGate struct {
	sessions repository.SessionRepository
	policy   domain.AdminPolicy
	hash     TokenHasher
	now      func() time.Time
}

func NewSessionGate(sessions repository.SessionRepository, policy domain.AdminPolicy) *SessionGate {
	return &SessionGate{
		sessions: sessions,
		policy:   policy,
		hash:     HashToken,
		now:      time.Now,
	}
}

// WithHasher replaces the digest function. Tests use it to force collisions.
func (g *SessionGate) WithHasher(hash TokenHasher) *SessionGate {
	g.hash = hash
	return g
}

func (g *SessionGate) WithClock(now func() time.Time) *SessionGate {
	g.now = now
	return g
}

// Resolve returns nil, nil for an empty, unknown or expired token, and for a
// session whose user has been deactivated or deleted. Only storage failures
// are reported as errors.
func (g *SessionGate) Resolve(ctx context.Context, rawToken string) (*domain.Identity, error) {
	if rawToken == "" {
		return nil, nil
	}

	identity, err := g.sessions.FindIdentity(ctx, g.hash(rawToken), g.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionLookupFailed, err)
	}
	return identity, nil
}

// ResolveAdmin is Resolve restricted to callers the admin policy accepts.
// It backs the admin route guard.
func (g *SessionGate) ResolveAdmin(ctx context.Context, rawToken string) (*domain.Identity, error) {
	identity, err := g.Resolve(ctx, rawToken)
	if err != nil || identity == nil {
		return nil, err
	}
	if !g.policy.IsAdmin(identity) {
		return nil, nil
	}
	return identity, nil
}
