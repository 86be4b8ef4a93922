package handlers

import (
	"net/http"

	"github.com/dom/personal-blog/internal/api/middleware"
	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/service"
	"github.com/google/uuid"
)

type ChatHandler struct {
	chatService *service.ChatService
	cfg         *config.Config
}

func NewChatHandler(chatService *service.ChatService, cfg *config.Config) *ChatHandler {
	return &ChatHandler{chatService: chatService, cfg: cfg}
}

type PostChatRequest struct {
	RoomID      string                 `json:"roomId"`
	Content     string                 `json:"content"`
	MessageType domain.ChatMessageType `json:"messageType"`
}

func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.chatService.List(r.Context(),
		r.URL.Query().Get("roomId"),
		queryInt(r, "limit", 50),
		queryInt(r, "offset", 0),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	for i, m := range page.Messages {
		page.Messages[i] = presentChatMessage(m, h.cfg.DisplayLocation)
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req PostChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	message, err := h.chatService.Post(r.Context(), identity, service.PostChatInput{
		RoomID:      req.RoomID,
		Content:     req.Content,
		MessageType: req.MessageType,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": presentChatMessage(message, h.cfg.DisplayLocation),
	})
}

func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	raw := r.URL.Query().Get("messageId")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "messageId is required")
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid messageId")
		return
	}

	if err := h.chatService.Delete(r.Context(), identity, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
