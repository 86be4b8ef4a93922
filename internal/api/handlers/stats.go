package handlers

import (
	"net/http"
	"strings"

	"github.com/dom/personal-blog/internal/api/middleware"
	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/service"
	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	statsService *service.StatsService
	cfg          *config.Config
}

func NewStatsHandler(statsService *service.StatsService, cfg *config.Config) *StatsHandler {
	return &StatsHandler{statsService: statsService, cfg: cfg}
}

func (h *StatsHandler) GetPostStats(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugParam(w, r)
	if !ok {
		return
	}

	stats, err := h.statsService.GetPostStats(r.Context(), slug)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// RecordView counts a view when the throttle allows it and returns the
// current counters with a counted flag.
func (h *StatsHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugParam(w, r)
	if !ok {
		return
	}

	result, err := h.statsService.RecordView(r.Context(), slug, visitorKey(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *StatsHandler) SiteStats(w http.ResponseWriter, r *http.Request) {
	overview, err := h.statsService.SiteOverview(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	for i, c := range overview.RecentComments {
		overview.RecentComments[i] = presentComment(c, h.cfg.DisplayLocation)
	}
	writeJSON(w, http.StatusOK, overview)
}

// visitorKey identifies logged-in callers by user and everyone else by IP.
func visitorKey(r *http.Request) domain.VisitorKey {
	if identity, ok := middleware.GetIdentity(r.Context()); ok {
		return domain.UserVisitor(identity.UserID)
	}
	return domain.IPVisitor(middleware.ClientIP(r))
}

func slugParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		writeError(w, http.StatusBadRequest, "Slug is required")
		return "", false
	}
	return slug, true
}
