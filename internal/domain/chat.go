package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChatRole represents the role of a chat message
type ChatRole string

const (
	ChatRole_System    ChatRole = "system"
	ChatRole_User      ChatRole = "user"
	ChatRole_Assistant ChatRole = "assistant"
	ChatRole_Tool      ChatRole = "tool"
)

// Message is one turn of an in-flight conversation. Messages are append-only:
// once added to a run's conversation they are never mutated.
type Message struct {
	Role       ChatRole
	Content    string
	ToolCallID *string
	ToolCalls  []ToolCall
}

// ChatMessage represents a persisted chat message in a user's conversation
type ChatMessage struct {
	ID               uuid.UUID
	UserID           string
	ChatRole         ChatRole
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Embedding        []float64
	CreatedAt        time.Time
}

// ChatMessageRepository defines the interface for chat message persistence
type ChatMessageRepository interface {
	// CreateChatMessage persists a chat message for a user's conversation
	CreateChatMessage(ctx context.Context, message ChatMessage) error

	// ListChatMessages retrieves messages for a user ordered by creation time.
	// If limit is greater than 0, only the last N messages are returned. If
	// since is non-zero, only messages created after it are returned.
	// Returns messages and a boolean indicating if there are more messages.
	ListChatMessages(ctx context.Context, userID string, limit int, since time.Time) ([]ChatMessage, bool, error)

	// SearchChatMessages retrieves the messages semantically closest to the
	// given query vector for a user, best match first.
	SearchChatMessages(ctx context.Context, userID string, queryVector []float64, limit int) ([]ChatMessage, error)

	// TrimConversation drops the oldest messages of a user's conversation so
	// that at most keep messages remain. Messages are dropped wholesale,
	// never edited.
	TrimConversation(ctx context.Context, userID string, keep int) error

	// DeleteConversation removes all messages for a user
	DeleteConversation(ctx context.Context, userID string) error
}
