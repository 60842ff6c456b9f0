package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zhouzirui/mindcare/internal/config"
	"github.com/zhouzirui/mindcare/internal/model/chat"
)

// Generator produces raw model text for one turn given the prior history.
type Generator interface {
	Generate(ctx context.Context, system string, history []chat.Turn, prompt string) (string, error)
}

// Service turns a user message into the reply envelope returned by /chat.
type Service struct {
	generator Generator
	template  *PromptTemplate
	logger    *zap.Logger
}

// NewService creates the AI service for the configured provider.
func NewService(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Service, error) {
	var (
		generator Generator
		err       error
	)
	switch cfg.Provider {
	case config.ProviderArk:
		generator, err = NewArkGenerator(ctx, cfg)
	case config.ProviderGemini:
		generator, err = NewGeminiGenerator(ctx, cfg)
	default:
		err = fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s generator: %w", cfg.Provider, err)
	}

	return New(generator, logger), nil
}

// New wraps an existing generator.
func New(generator Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		generator: generator,
		template:  DefaultTemplate(),
		logger:    logger,
	}
}

// Reply runs one mental-care turn.
func (s *Service) Reply(ctx context.Context, history []chat.Turn, userMessage string) (*chat.Response, error) {
	raw, err := s.generator.Generate(ctx, s.template.BuildSystemPrompt(), history, s.template.BuildTurnPrompt(userMessage))
	if err != nil {
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}

	reply, params, err := parseModelOutput(raw, userMessage)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("generated reply",
		zap.Int("history", len(history)),
		zap.Int("length", len(reply)))

	return &chat.Response{AIMessage: reply, EmotionParameters: params}, nil
}
