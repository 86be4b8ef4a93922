package handlers

import (
	"net/http"

	"github.com/dom/personal-blog/internal/api/middleware"
	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/service"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	cfg                 *config.Config
}

func NewNotificationHandler(notificationService *service.NotificationService, cfg *config.Config) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, cfg: cfg}
}

type NotificationIDsRequest struct {
	NotificationIDs []uuid.UUID `json:"notificationIds"`
	MarkAllAsRead   bool        `json:"markAllAsRead"`
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	page, err := h.notificationService.List(r.Context(), identity.UserID,
		queryInt(r, "page", 1),
		queryInt(r, "pageSize", 20),
		r.URL.Query().Get("unread") == "true",
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	for i, n := range page.Notifications {
		page.Notifications[i] = presentNotification(n, h.cfg.DisplayLocation)
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req NotificationIDsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.notificationService.MarkRead(r.Context(), identity.UserID, req.NotificationIDs, req.MarkAllAsRead)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"updated": updated,
	})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req NotificationIDsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	deleted, err := h.notificationService.Delete(r.Context(), identity.UserID, req.NotificationIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}
