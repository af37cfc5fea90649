package usecases

import (
	"context"
	"strings"

	"github.com/cleitonmarx/symbiont/depend"

	"github.com/lexrag/aigateway/internal/domain"
	"github.com/lexrag/aigateway/internal/telemetry"
)

// SearchHistory defines the interface for semantic history search
type SearchHistory interface {
	// Query retrieves the messages semantically closest to the search text,
	// best match first.
	Query(ctx context.Context, userID, search string, limit int) ([]domain.ChatMessage, error)
}

// SearchHistoryImpl is the implementation of the SearchHistory use case
type SearchHistoryImpl struct {
	chatMessageRepo domain.ChatMessageRepository
	encoder         domain.SemanticEncoder
	embeddingModel  string
}

// NewSearchHistoryImpl creates a new instance of SearchHistoryImpl
func NewSearchHistoryImpl(
	chatMessageRepo domain.ChatMessageRepository,
	encoder domain.SemanticEncoder,
	embeddingModel string,
) SearchHistoryImpl {
	return SearchHistoryImpl{
		chatMessageRepo: chatMessageRepo,
		encoder:         encoder,
		embeddingModel:  embeddingModel,
	}
}

// Query vectorizes the search text and ranks persisted messages by distance
func (sh SearchHistoryImpl) Query(ctx context.Context, userID, search string, limit int) ([]domain.ChatMessage, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	if userID == "" {
		return nil, domain.NewValidationErr("user id cannot be empty")
	}
	if strings.TrimSpace(search) == "" {
		return nil, domain.NewValidationErr("search text cannot be empty")
	}
	if sh.embeddingModel == "" {
		return nil, domain.NewValidationErr("semantic search requires an embedding model")
	}

	vec, err := sh.encoder.VectorizeQuery(spanCtx, sh.embeddingModel, search)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	RecordLLMTokensEmbedding(spanCtx, vec.TotalTokens)

	messages, err := sh.chatMessageRepo.SearchChatMessages(spanCtx, userID, vec.Vector, limit)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	return messages, nil
}

// InitSearchHistory is the initializer for the SearchHistory use case
type InitSearchHistory struct {
	Repo           domain.ChatMessageRepository `resolve:""`
	Encoder        domain.SemanticEncoder       `resolve:""`
	EmbeddingModel string                       `config:"EMBEDDING_MODEL"`
}

// Initialize registers the SearchHistory use case in the dependency container
func (i InitSearchHistory) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[SearchHistory](NewSearchHistoryImpl(i.Repo, i.Encoder, i.EmbeddingModel))
	return ctx, nil
}
