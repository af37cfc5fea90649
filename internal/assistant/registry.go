// Package assistant holds the static tool catalog presented to the model and
// the registry that serves it to the orchestration loop.
package assistant

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/cleitonmarx/symbiont/depend"

	"github.com/lexrag/aigateway/internal/common"
	"github.com/lexrag/aigateway/internal/domain"
)

const (
	defaultRelevantToolsTopK     = 6
	defaultRelevantToolsMinScore = 0.35

	fallbackStatusMessage   = "⏳ Processing request..."
	fallbackCompleteMessage = "✅ Done"
)

// toolVector holds a tool definition and its vector embedding for relevance
// scoring.
type toolVector struct {
	Definition domain.ToolDefinition
	Vectors    []float64
}

// ToolCatalogRegistry is the immutable tool catalog. It is built once at
// startup and freely read by any number of concurrent runs.
type ToolCatalogRegistry struct {
	se             domain.SemanticEncoder
	embeddingModel string
	tools          map[string]toolVector
}

// NewToolCatalogRegistry creates a tool registry.
func NewToolCatalogRegistry(se domain.SemanticEncoder, embeddingModel string, tools ...toolVector) ToolCatalogRegistry {
	toolMap := make(map[string]toolVector)
	for _, tool := range tools {
		toolMap[tool.Definition.Name] = tool
	}

	return ToolCatalogRegistry{
		se:             se,
		embeddingModel: embeddingModel,
		tools:          toolMap,
	}
}

// Lookup implements domain.ToolRegistry.
func (r ToolCatalogRegistry) Lookup(name string) (domain.ToolDefinition, bool) {
	tool, ok := r.tools[name]
	return tool.Definition, ok
}

// List returns all registered tool definitions in a stable order.
func (r ToolCatalogRegistry) List() []domain.ToolDefinition {
	res := make([]domain.ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		res = append(res, tool.Definition)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Name < res[j].Name
	})
	return res
}

// StatusMessage returns a friendly progress message for the given tool name.
func (r ToolCatalogRegistry) StatusMessage(toolName string) string {
	if tool, ok := r.tools[toolName]; ok {
		if msg := tool.Definition.ProgressMessage; msg != "" {
			return msg
		}
	}
	return fallbackStatusMessage
}

// CompleteMessage returns a friendly completion message for the given tool name.
func (r ToolCatalogRegistry) CompleteMessage(toolName string) string {
	if tool, ok := r.tools[toolName]; ok {
		if msg := tool.Definition.CompleteMessage; msg != "" {
			return msg
		}
	}
	return fallbackCompleteMessage
}

// ListRelevant returns the tools most relevant to the user input, scored by
// cosine similarity against precomputed definition embeddings. It falls back
// to the full catalog when embeddings are unavailable.
func (r ToolCatalogRegistry) ListRelevant(ctx context.Context, userInput string) []domain.ToolDefinition {
	allTools := r.List()

	queryVector, err := r.se.VectorizeQuery(ctx, r.embeddingModel, userInput)
	if err != nil || len(queryVector.Vector) == 0 {
		return allTools
	}

	type scoredTool struct {
		definition domain.ToolDefinition
		score      float64
	}

	scoredTools := make([]scoredTool, 0, len(r.tools))
	for _, tool := range r.tools {
		score, ok := common.CosineSimilarity(queryVector.Vector, tool.Vectors)
		if !ok || score < defaultRelevantToolsMinScore {
			continue
		}

		scoredTools = append(scoredTools, scoredTool{
			definition: tool.Definition,
			score:      score,
		})
	}

	if len(scoredTools) == 0 {
		return allTools
	}

	sort.Slice(scoredTools, func(i, j int) bool {
		if scoredTools[i].score == scoredTools[j].score {
			return scoredTools[i].definition.Name < scoredTools[j].definition.Name
		}
		return scoredTools[i].score > scoredTools[j].score
	})

	limit := min(len(scoredTools), defaultRelevantToolsTopK)

	relevant := make([]domain.ToolDefinition, 0, limit)
	for i := range limit {
		relevant = append(relevant, scoredTools[i].definition)
	}
	return relevant
}

// InitToolRegistry builds the tool catalog and registers it in the
// dependency container.
type InitToolRegistry struct {
	SemanticEncoder domain.SemanticEncoder `resolve:""`
	Logger          *log.Logger            `resolve:""`
	EmbeddingModel  string                 `config:"EMBEDDING_MODEL" default:""`
}

func (i InitToolRegistry) Initialize(ctx context.Context) (context.Context, error) {
	toolVectors := generateToolVectors(ctx, Catalog(), i.SemanticEncoder, i.EmbeddingModel, i.Logger)
	registry := NewToolCatalogRegistry(i.SemanticEncoder, i.EmbeddingModel, toolVectors...)
	depend.Register[domain.ToolRegistry](registry)
	return ctx, nil
}

// generateToolVectors generates vector embeddings for the tool catalog.
// Relevance filtering is best-effort: a failed embedding leaves the tool
// without a vector so ListRelevant falls back to the full catalog.
func generateToolVectors(ctx context.Context, definitions []domain.ToolDefinition, encoder domain.SemanticEncoder, embeddingModel string, logger *log.Logger) []toolVector {
	details := make([]toolVector, 0, len(definitions))
	for _, definition := range definitions {
		detail := toolVector{Definition: definition}
		if embeddingModel != "" {
			vector, err := encoder.VectorizeToolDefinition(ctx, embeddingModel, definition)
			if err != nil {
				logger.Printf("InitToolRegistry: %v", fmt.Errorf("failed to vectorize tool '%s': %w", definition.Name, err))
			} else {
				detail.Vectors = vector.Vector
			}
		}
		details = append(details, detail)
	}
	return details
}
