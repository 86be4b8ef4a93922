package handlers

import (
	"net/http"

	"github.com/dom/personal-blog/internal/api/middleware"
	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/service"
	"github.com/go-chi/chi/v5"
)

type FollowHandler struct {
	followService *service.FollowService
	cfg           *config.Config
}

func NewFollowHandler(followService *service.FollowService, cfg *config.Config) *FollowHandler {
	return &FollowHandler{followService: followService, cfg: cfg}
}

func (h *FollowHandler) Status(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	status, err := h.followService.Status(r.Context(), identity, chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	status.User = presentUser(status.User, h.cfg.DisplayLocation)
	writeJSON(w, http.StatusOK, status)
}

func (h *FollowHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	result, err := h.followService.Toggle(r.Context(), identity, chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	result.User = presentUser(result.User, h.cfg.DisplayLocation)
	writeJSON(w, http.StatusOK, result)
}
