package domain

import "context"

// EmbeddingVector is a semantic vector plus token accounting.
type EmbeddingVector struct {
	Vector      []float64
	TotalTokens int
}

// SemanticEncoder defines embedding/vectorization behavior in domain terms.
type SemanticEncoder interface {
	// VectorizeQuery generates a semantic vector for one user query.
	VectorizeQuery(ctx context.Context, model, query string) (EmbeddingVector, error)
	// VectorizeToolDefinition generates a semantic vector for one tool definition.
	VectorizeToolDefinition(ctx context.Context, model string, tool ToolDefinition) (EmbeddingVector, error)
}
