package usecases

import (
	"context"
	"time"

	"github.com/cleitonmarx/symbiont/depend"

	"github.com/lexrag/aigateway/internal/domain"
	"github.com/lexrag/aigateway/internal/telemetry"
)

// ListHistory defines the interface for the ListHistory use case
type ListHistory interface {
	// Query retrieves a user's conversation history. since accepts relative
	// tokens like "yesterday" as well as absolute dates; an empty since
	// returns the full retained window.
	Query(ctx context.Context, userID string, limit int, since string) ([]domain.ChatMessage, bool, error)
}

// ListHistoryImpl is the implementation of the ListHistory use case
type ListHistoryImpl struct {
	chatMessageRepo domain.ChatMessageRepository
	timeProvider    domain.CurrentTimeProvider
}

// NewListHistoryImpl creates a new instance of ListHistoryImpl
func NewListHistoryImpl(
	chatMessageRepo domain.ChatMessageRepository,
	timeProvider domain.CurrentTimeProvider,
) ListHistoryImpl {
	return ListHistoryImpl{
		chatMessageRepo: chatMessageRepo,
		timeProvider:    timeProvider,
	}
}

// Query retrieves chat messages for a user, newest window first
func (lh ListHistoryImpl) Query(ctx context.Context, userID string, limit int, since string) ([]domain.ChatMessage, bool, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	if userID == "" {
		return nil, false, domain.NewValidationErr("user id cannot be empty")
	}

	cutoff := time.Time{}
	if since != "" {
		parsed, ok := domain.ParseSince(since, lh.timeProvider.Now(), time.UTC)
		if !ok {
			return nil, false, domain.NewValidationErr("could not parse since value: " + since)
		}
		cutoff = parsed
	}

	messages, hasMore, err := lh.chatMessageRepo.ListChatMessages(spanCtx, userID, limit, cutoff)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, false, err
	}

	// Filter out tool messages before returning to the user
	messagesToReturn := []domain.ChatMessage{}
	for _, msg := range messages {
		if msg.ChatRole != domain.ChatRole_Tool && len(msg.Content) > 0 {
			messagesToReturn = append(messagesToReturn, msg)
		}
	}
	return messagesToReturn, hasMore, nil
}

// InitListHistory is the initializer for the ListHistory use case
type InitListHistory struct {
	Repo         domain.ChatMessageRepository `resolve:""`
	TimeProvider domain.CurrentTimeProvider   `resolve:""`
}

// Initialize registers the ListHistory use case in the dependency container
func (i InitListHistory) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[ListHistory](NewListHistoryImpl(i.Repo, i.TimeProvider))
	return ctx, nil
}
