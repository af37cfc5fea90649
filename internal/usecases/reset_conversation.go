package usecases

import (
	"context"

	"github.com/cleitonmarx/symbiont/depend"

	"github.com/lexrag/aigateway/internal/domain"
	"github.com/lexrag/aigateway/internal/telemetry"
)

// ResetConversation defines the interface for resetting a user's conversation
type ResetConversation interface {
	Execute(ctx context.Context, userID string) error
}

// ResetConversationImpl implements the ResetConversation usecase
type ResetConversationImpl struct {
	uow domain.UnitOfWork
}

// NewResetConversationImpl creates a new ResetConversationImpl instance
func NewResetConversationImpl(uow domain.UnitOfWork) *ResetConversationImpl {
	return &ResetConversationImpl{uow: uow}
}

// Execute deletes all messages in the user's conversation
func (uc *ResetConversationImpl) Execute(ctx context.Context, userID string) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	if userID == "" {
		return domain.NewValidationErr("user id cannot be empty")
	}

	err := uc.uow.Execute(spanCtx, func(uow domain.UnitOfWork) error {
		return uow.ChatMessage().DeleteConversation(spanCtx, userID)
	})
	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	return nil
}

// InitResetConversation is the initializer for the ResetConversation usecase
type InitResetConversation struct {
	Uow domain.UnitOfWork `resolve:""`
}

// Initialize registers the ResetConversation usecase in the dependency container
func (i InitResetConversation) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[ResetConversation](NewResetConversationImpl(i.Uow))
	return ctx, nil
}
