package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/mindcare/internal/model/chat"
)

var (
	ErrMessageRequired      = errors.New("message is required")
	ErrAssistantUnavailable = errors.New("assistant unavailable")
)

// DefaultHistoryLimit caps the stored turns of a conversation.
const DefaultHistoryLimit = 50

// Assistant produces the reply envelope for one user message.
type Assistant interface {
	Reply(ctx context.Context, history []chat.Turn, userMessage string) (*chat.Response, error)
}

// Options tunes which conversation is used and how much of it is kept.
type Options struct {
	ConversationID string
	HistoryLimit   int
}

// Service encapsulates conversation state management.
type Service struct {
	store          Store
	assistant      Assistant
	conversationID string
	limit          int
	logger         *zap.Logger
	now            func() time.Time
}

// NewService wires the history store to the assistant. assistant may be nil,
// in which case Exchange reports ErrAssistantUnavailable.
func NewService(store Store, assistant Assistant, opts Options, logger *zap.Logger) *Service {
	if opts.ConversationID == "" {
		opts.ConversationID = "main_chat_session"
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:          store,
		assistant:      assistant,
		conversationID: opts.ConversationID,
		limit:          opts.HistoryLimit,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Exchange answers one user message and records the pair in history.
func (s *Service) Exchange(ctx context.Context, message string) (*chat.Response, error) {
	if message == "" {
		return nil, ErrMessageRequired
	}
	if s.assistant == nil {
		return nil, ErrAssistantUnavailable
	}

	history, err := s.store.Load(ctx, s.conversationID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	resp, err := s.assistant.Reply(ctx, history, message)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.store.Append(ctx, s.conversationID, s.limit,
		chat.Turn{ID: uuid.NewString(), Role: chat.RoleUser, Content: message, CreatedAt: now},
		chat.Turn{ID: uuid.NewString(), Role: chat.RoleModel, Content: resp.AIMessage, CreatedAt: now},
	); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}

	s.logger.Info("history updated",
		zap.String("conversation", s.conversationID),
		zap.Int("previous_turns", len(history)))
	return resp, nil
}

// Transcript returns the stored turns, oldest first.
func (s *Service) Transcript(ctx context.Context) ([]chat.Turn, error) {
	return s.store.Load(ctx, s.conversationID)
}

// Reset clears the conversation.
func (s *Service) Reset(ctx context.Context) error {
	return s.store.Reset(ctx, s.conversationID)
}
