package chat

import (
	"context"

	"github.com/zhouzirui/mindcare/internal/model/chat"
)

// Store persists conversation turns.
type Store interface {
	// Load returns the turns of a conversation, oldest first.
	Load(ctx context.Context, conversationID string) ([]chat.Turn, error)
	// Append adds turns atomically and keeps only the newest limit turns.
	Append(ctx context.Context, conversationID string, limit int, turns ...chat.Turn) error
	// Reset removes every turn of a conversation.
	Reset(ctx context.Context, conversationID string) error
}
