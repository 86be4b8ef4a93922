package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrMissingFields, http.StatusBadRequest},
	{service.ErrPasswordMismatch, http.StatusBadRequest},
	{service.ErrPasswordTooShort, http.StatusBadRequest},
	{domain.ErrInvalidUsername, http.StatusBadRequest},
	{domain.ErrInvalidEmail, http.StatusBadRequest},
	{domain.ErrInvalidRole, http.StatusBadRequest},
	{domain.ErrInvalidStatus, http.StatusBadRequest},
	{service.ErrPostInvalid, http.StatusBadRequest},
	{service.ErrCommentEmpty, http.StatusBadRequest},
	{service.ErrCommentTooLong, http.StatusBadRequest},
	{service.ErrParentNotFound, http.StatusBadRequest},
	{service.ErrParentWrongPost, http.StatusBadRequest},
	{service.ErrFollowSelf, http.StatusBadRequest},
	{service.ErrNoNotificationIDs, http.StatusBadRequest},
	{service.ErrChatMessageEmpty, http.StatusBadRequest},
	{service.ErrChatMessageTooLong, http.StatusBadRequest},
	{service.ErrChatMessageType, http.StatusBadRequest},
	{service.ErrChatMessageDeleted, http.StatusBadRequest},
	{service.ErrNothingToUpdate, http.StatusBadRequest},
	{service.ErrCannotModifySelf, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrAccountDisabled, http.StatusUnauthorized},
	{service.ErrAuthRequired, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrPostNotFound, http.StatusNotFound},
	{service.ErrChatMessageNotFound, http.StatusNotFound},
	{service.ErrUsernameExists, http.StatusConflict},
	{service.ErrEmailExists, http.StatusConflict},
	{service.ErrTooManyAttempts, http.StatusTooManyRequests},
}

// writeServiceError maps known service errors to their status code. Anything
// else is logged and reported as a 500 without details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			writeError(w, e.status, e.err.Error())
			return
		}
	}
	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
