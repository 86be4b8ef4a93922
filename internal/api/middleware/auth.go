package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/service"
)

type contextKey string

const (
	IdentityKey contextKey = "identity"

	SessionCookieName = "auth-token"
)

// Session resolves the caller once per request and stores the identity on
// the context. Requests without a valid session continue anonymously.
func Session(gate *service.SessionGate, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := gate.Resolve(r.Context(), token)
			if err != nil {
				logger.Error("session resolution failed", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if identity == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAuth rejects anonymous callers with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetIdentity(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin re-resolves the session through the gate's admin check and
// rejects everyone it does not accept with 403, anonymous callers included.
func RequireAdmin(gate *service.SessionGate, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := gate.ResolveAdmin(r.Context(), SessionToken(r))
			if err != nil {
				logger.Error("admin session resolution failed", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if identity == nil {
				writeError(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

func GetIdentity(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*domain.Identity)
	return identity, ok && identity != nil
}

// SessionToken reads the session cookie, falling back to a bearer token for
// non-browser clients.
func SessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// ClientIP is the address chi's RealIP middleware left in RemoteAddr.
func ClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
