package handlers

import (
	"net/http"

	"github.com/dom/personal-blog/internal/api/middleware"
	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/service"
	"github.com/google/uuid"
)

type CommentHandler struct {
	commentService *service.CommentService
	cfg            *config.Config
}

func NewCommentHandler(commentService *service.CommentService, cfg *config.Config) *CommentHandler {
	return &CommentHandler{commentService: commentService, cfg: cfg}
}

type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentID string `json:"parentId"`
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugParam(w, r)
	if !ok {
		return
	}

	tree, err := h.commentService.ListTree(r.Context(), slug)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.localize(tree)
	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": tree})
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())
	slug, ok := slugParam(w, r)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := service.CreateCommentInput{Content: req.Content}
	if req.ParentID != "" {
		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid parent comment ID")
			return
		}
		input.ParentID = &parentID
	}

	comment, err := h.commentService.Create(r.Context(), identity, slug, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"comment": presentComment(comment, h.cfg.DisplayLocation),
	})
}

func (h *CommentHandler) localize(nodes []*service.CommentNode) {
	for _, node := range nodes {
		node.Comment = presentComment(node.Comment, h.cfg.DisplayLocation)
		h.localize(node.Replies)
	}
}
