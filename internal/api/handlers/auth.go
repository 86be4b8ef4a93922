package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dom/personal-blog/internal/api/middleware"
	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	cfg         *config.Config
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg, logger: logger}
}

type RegisterRequest struct {
	Nickname        string `json:"nickname"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Nickname string `json:"nickname"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:            req.Nickname,
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Registration successful",
		"user":    presentUser(user, h.cfg.DisplayLocation),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
		ClientIP: middleware.ClientIP(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, int(h.cfg.SessionTTL.Seconds())))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    presentUser(result.User, h.cfg.DisplayLocation),
	})
}

// Logout always succeeds from the caller's point of view; the cookie is
// cleared even when the session could not be removed.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to delete session", "error", err)
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out",
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": presentUser(user, h.cfg.DisplayLocation),
	})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), identity.UserID, service.UpdateProfileInput{
		Name:     req.Nickname,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated",
		"user":    presentUser(user, h.cfg.DisplayLocation),
	})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}
