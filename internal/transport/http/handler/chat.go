package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"articlesearch/internal/app"
	"articlesearch/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
	logger      *slog.Logger
}

type AskRequest struct {
	// SessionID is optional; a new session is started when empty.
	SessionID string `json:"session_id" binding:"max=255"`
	Query     string `json:"query" binding:"required"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      slog.Default().With("component", "chat-handler"),
	}
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	sessionID, err := h.chatService.StartSession(c.Request.Context())
	if err != nil {
		h.logger.Error("create session failed", "err", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create session failed")
		return
	}
	response.OK(c, gin.H{"session_id": sessionID})
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	sessions, err := h.chatService.ListSessions(c.Request.Context())
	if err != nil {
		h.logger.Error("list sessions failed", "err", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list sessions failed")
		return
	}
	if sessions == nil {
		sessions = []string{}
	}
	response.OK(c, sessions)
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	history, err := h.chatService.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			h.logger.Error("get history failed", "err", err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		}
		return
	}
	if len(history) == 0 {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "session not found")
		return
	}
	response.OK(c, history)
}

func (h *ChatHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		var err error
		sessionID, err = h.chatService.StartSession(c.Request.Context())
		if err != nil {
			h.logger.Error("create session failed", "err", err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create session failed")
			return
		}
	}

	result, err := h.chatService.Ask(c.Request.Context(), app.AskInput{
		SessionID: sessionID,
		Query:     req.Query,
	})
	switch {
	case err == nil:
		response.OK(c, result)
	case errors.Is(err, app.ErrMemoryNotRecorded) && result != nil:
		response.Partial(c, response.CodeMemoryNotRecorded, "answer was not saved to session memory", result)
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrQueryEmpty):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	default:
		h.logger.Error("ask failed", "session_id", sessionID, "err", err)
		response.Error(c, http.StatusBadGateway, response.CodeAgentFailed, "agent failed to answer")
	}
}
