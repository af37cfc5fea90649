package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// EventType_CHAT_MESSAGE_SENT represents the event when a chat message is persisted.
	EventType_CHAT_MESSAGE_SENT EventType = "CHAT_MESSAGE.SENT"
	// EventType_RUN_COMPLETED represents the event when an orchestration run reaches a terminal state.
	EventType_RUN_COMPLETED EventType = "RUN.COMPLETED"
)

// ChatMessageEvent represents a domain event for persisted chat messages.
type ChatMessageEvent struct {
	Type          EventType
	ChatRole      ChatRole
	ChatMessageID uuid.UUID
	UserID        string
}

// RunCompletedEvent is the audit record emitted when a run terminates.
type RunCompletedEvent struct {
	Type            EventType
	RunID           uuid.UUID
	UserID          string
	Status          RunStatus
	ToolsExecuted   []string
	IterationsUsed  int
	ConfidenceLevel ConfidenceLevel
	CompletedAt     time.Time
}

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event OutboxEvent) error
}
