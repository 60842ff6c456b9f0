package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/mindcare/internal/handler/chat"
	model "github.com/zhouzirui/mindcare/internal/model/chat"
	"github.com/zhouzirui/mindcare/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// Handler WebSocket聊天处理器：每个文本帧一次对话
type Handler struct {
	conversation chat.Conversation
	logger       *zap.Logger
	upgrader     websocket.Upgrader
}

// New 创建WebSocket处理器
func New(conversation chat.Conversation, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		conversation: conversation,
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type errorFrame struct {
	Error string `json:"error"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go pingLoop(ctx, conn)

	h.logger.Debug("websocket connected", zap.String("remote", r.RemoteAddr))

	for {
		var msg model.Request
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		var reply any
		resp, err := h.conversation.Exchange(ctx, msg.Message)
		if err != nil {
			status, message := chat.StatusFor(err)
			if status >= http.StatusInternalServerError {
				h.logger.Error("websocket exchange failed", zap.Int("status", status), zap.Error(err))
			}
			reply = errorFrame{Error: message}
		} else {
			reply = resp
		}

		frame, err := utils.EncodeJSON(reply, "")
		if err != nil {
			h.logger.Error("websocket encode failed", zap.Error(err))
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			h.logger.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

// pingLoop uses WriteControl, which may run concurrently with WriteMessage.
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
