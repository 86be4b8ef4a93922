package handlers

import (
	"net/http"

	"github.com/dom/personal-blog/internal/api/middleware"
	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/service"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminService *service.AdminService
	cfg          *config.Config
}

func NewAdminHandler(adminService *service.AdminService, cfg *config.Config) *AdminHandler {
	return &AdminHandler{adminService: adminService, cfg: cfg}
}

type UpdateUserRequest struct {
	UserID   string       `json:"userId"`
	Role     *domain.Role `json:"role"`
	IsActive *bool        `json:"isActive"`
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": presentUsers(users, h.cfg.DisplayLocation),
	})
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid userId")
		return
	}

	user, err := h.adminService.UpdateUser(r.Context(), identity, service.UpdateUserInput{
		UserID:   userID,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": presentUser(user, h.cfg.DisplayLocation),
	})
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid userId")
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), identity, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *AdminHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.adminService.ListPosts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	for _, p := range posts {
		p.Post = presentPost(p.Post, h.cfg.DisplayLocation)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	if err := h.adminService.DeletePost(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *AdminHandler) SyncComments(w http.ResponseWriter, r *http.Request) {
	result, err := h.adminService.SyncComments(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
