package usecases

import (
	"context"

	"github.com/cleitonmarx/symbiont/depend"

	"github.com/lexrag/aigateway/internal/domain"
	"github.com/lexrag/aigateway/internal/telemetry"
)

// ListTools defines the interface for the ListTools use case
type ListTools interface {
	Query(ctx context.Context) []domain.ToolDefinition
}

// ListToolsImpl is the implementation of the ListTools use case
type ListToolsImpl struct {
	registry domain.ToolRegistry
}

// NewListToolsImpl creates a new instance of ListToolsImpl
func NewListToolsImpl(registry domain.ToolRegistry) ListToolsImpl {
	return ListToolsImpl{registry: registry}
}

// Query returns the full tool catalog in stable order
func (lt ListToolsImpl) Query(ctx context.Context) []domain.ToolDefinition {
	_, span := telemetry.Start(ctx)
	defer span.End()

	return lt.registry.List()
}

// InitListTools is the initializer for the ListTools use case
type InitListTools struct {
	Registry domain.ToolRegistry `resolve:""`
}

// Initialize registers the ListTools use case in the dependency container
func (i InitListTools) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[ListTools](NewListToolsImpl(i.Registry))
	return ctx, nil
}
