package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/mindcare/internal/handler/chat"
	"github.com/zhouzirui/mindcare/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/mindcare/internal/middleware"
	"github.com/zhouzirui/mindcare/pkg/utils"
	"github.com/zhouzirui/mindcare/web"
)

// RouterOptions 路由配置
type RouterOptions struct {
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(conversation chat.Conversation, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(opts.AllowedOrigins))

	chat.New(conversation, logger).RegisterRoutes(r)
	ws.New(conversation, logger).RegisterRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// 浏览器版聊天组件
	r.Handle("/*", web.Handler())

	return r
}
