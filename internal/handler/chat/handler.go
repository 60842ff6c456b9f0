package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/mindcare/internal/model/chat"
	chatService "github.com/zhouzirui/mindcare/internal/service/chat"
	"github.com/zhouzirui/mindcare/pkg/utils"
)

// MessageRequiredText is returned when the request carries no message.
const MessageRequiredText = "メッセージがありません。"

// Conversation is the part of the conversation service the handler needs.
type Conversation interface {
	Exchange(ctx context.Context, message string) (*chat.Response, error)
	Transcript(ctx context.Context) ([]chat.Turn, error)
	Reset(ctx context.Context) error
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	conversation Conversation
	logger       *zap.Logger
}

// New 创建聊天处理器
func New(conversation Conversation, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		conversation: conversation,
		logger:       logger,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/history", h.handleHistory)
	r.Delete("/history", h.handleReset)
}

// handleChat 处理一次对话
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chat.Request
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.conversation.Exchange(r.Context(), payload.Message)
	if err != nil {
		status, message := StatusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("chat exchange failed", zap.Int("status", status), zap.Error(err))
		}
		utils.RespondError(w, status, message)
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleHistory 返回会话历史
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := h.conversation.Transcript(r.Context())
	if err != nil {
		h.logger.Error("load history failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

// handleReset 清空会话
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.conversation.Reset(r.Context()); err != nil {
		h.logger.Error("reset history failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatusFor maps a conversation error onto an HTTP status and client message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, chatService.ErrMessageRequired):
		return http.StatusBadRequest, MessageRequiredText
	case errors.Is(err, chatService.ErrAssistantUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
