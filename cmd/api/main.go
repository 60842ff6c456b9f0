package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/mindcare/internal/config"
	"github.com/zhouzirui/mindcare/internal/handler"
	"github.com/zhouzirui/mindcare/internal/logging"
	"github.com/zhouzirui/mindcare/internal/service/ai"
	"github.com/zhouzirui/mindcare/internal/service/chat"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mindcare backend: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logOpts := logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development}
	if cfg.Log.File != "" {
		logOpts.OutputPaths = []string{"stderr", cfg.Log.File}
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file loaded, using system environment only", zap.Error(envErr))
	}

	store, closeStore, err := openStore(ctx, cfg.History, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Initialize AI service
	var assistant chat.Assistant
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI, logger.Named("ai"))
		if err != nil {
			logger.Warn("failed to initialize AI service, /chat will answer 503", zap.Error(err))
		} else {
			assistant = aiService
			logger.Info("AI service initialized", zap.String("provider", cfg.AI.Provider))
		}
	} else {
		logger.Warn("AI credentials not configured, /chat will answer 503", zap.String("provider", cfg.AI.Provider))
	}

	conversation := chat.NewService(store, assistant, chat.Options{
		ConversationID: cfg.History.ConversationID,
		HistoryLimit:   cfg.History.Limit,
	}, logger.Named("chat"))

	router := handler.NewRouter(conversation, handler.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger.Named("http"),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("mindcare backend listening", zap.String("addr", srv.Addr))
	return runServer(ctx, srv)
}

func openStore(ctx context.Context, cfg config.HistoryConfig, logger *zap.Logger) (chat.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := chat.OpenSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("history stored in sqlite", zap.String("path", cfg.SQLitePath))
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("close sqlite store", zap.Error(err))
			}
		}, nil
	default:
		logger.Info("history stored in memory")
		return chat.NewMemoryStore(), func() {}, nil
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
