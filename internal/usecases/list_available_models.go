package usecases

import (
	"context"

	"github.com/cleitonmarx/symbiont/depend"

	"github.com/lexrag/aigateway/internal/domain"
	"github.com/lexrag/aigateway/internal/telemetry"
)

// ListAvailableModels defines the use case for listing models advertised by
// the model server
type ListAvailableModels interface {
	Query(ctx context.Context) ([]domain.ModelInfo, error)
}

// ListAvailableModelsImpl implements the ListAvailableModels use case
type ListAvailableModelsImpl struct {
	modelClient domain.ModelClient
}

// NewListAvailableModelsImpl creates a new ListAvailableModelsImpl instance
func NewListAvailableModelsImpl(modelClient domain.ModelClient) *ListAvailableModelsImpl {
	return &ListAvailableModelsImpl{modelClient: modelClient}
}

// Query retrieves the list of available models
func (uc ListAvailableModelsImpl) Query(ctx context.Context) ([]domain.ModelInfo, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	models, err := uc.modelClient.AvailableModels(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	return models, nil
}

// InitListAvailableModels is the initializer for the ListAvailableModels use case
type InitListAvailableModels struct {
	ModelClient domain.ModelClient `resolve:""`
}

// Initialize registers the ListAvailableModels use case in the dependency container
func (i InitListAvailableModels) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[ListAvailableModels](NewListAvailableModelsImpl(i.ModelClient))
	return ctx, nil
}
