package handlers

import (
	"net/http"

	"github.com/dom/personal-blog/internal/api/middleware"
	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type PostHandler struct {
	postService *service.PostService
	cfg         *config.Config
}

func NewPostHandler(postService *service.PostService, cfg *config.Config) *PostHandler {
	return &PostHandler{postService: postService, cfg: cfg}
}

type CreatePostRequest struct {
	Title   string            `json:"title"`
	Content string            `json:"content"`
	Status  domain.PostStatus `json:"status"`
}

type UpdatePostRequest struct {
	Title   *string            `json:"title"`
	Content *string            `json:"content"`
	Status  *domain.PostStatus `json:"status"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), identity, service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Status:  req.Status,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"post": presentPost(post, h.cfg.DisplayLocation),
	})
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	page, err := h.postService.List(r.Context(), identity,
		domain.PostStatus(r.URL.Query().Get("status")),
		queryInt(r, "page", 1),
		queryInt(r, "limit", 10),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page.Posts = presentPosts(page.Posts, h.cfg.DisplayLocation)
	writeJSON(w, http.StatusOK, page)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	post, err := h.postService.GetBySlug(r.Context(), identity, chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"post": presentPost(post, h.cfg.DisplayLocation),
	})
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var req UpdatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.postService.Update(r.Context(), identity, id, service.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Status:  req.Status,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"post": presentPost(post, h.cfg.DisplayLocation),
	})
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	if err := h.postService.Delete(r.Context(), identity, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
