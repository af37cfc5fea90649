package modelrunner

import (
	"fmt"
	"strings"

	"github.com/lexrag/aigateway/internal/domain"
)

// EmbeddingGenerator defines the interface for generating embedding prompts
// for tool definitions and search inputs.
type EmbeddingGenerator interface {
	// GenerateToolDefinitionPrompt creates the prompt used for generating embeddings for a tool definition.
	GenerateToolDefinitionPrompt(tool domain.ToolDefinition) string
	// GenerateSearchPrompt creates the prompt used for generating embeddings for a user query.
	GenerateSearchPrompt(searchInput string) string
}

// EmbeddingFactory provides a method to get an EmbeddingGenerator based on the model name.
type EmbeddingFactory interface {
	// Get returns an EmbeddingGenerator for the specified model name.
	Get(model string) EmbeddingGenerator
}

// embeddingFactory is the default implementation of EmbeddingFactory.
type embeddingFactory struct {
}

func (f embeddingFactory) Get(model string) EmbeddingGenerator {
	if strings.Contains(model, "embeddinggemma") {
		return gemmaEmbedding{}
	}
	return defaultEmbeddingGenerator{}
}

// gemmaEmbedding implements the EmbeddingGenerator interface for the Gemma embedding model.
type gemmaEmbedding struct{}

func (g gemmaEmbedding) GenerateToolDefinitionPrompt(tool domain.ToolDefinition) string {
	return fmt.Sprintf("title: %s | text: %s", tool.Name, tool.Description)
}

func (g gemmaEmbedding) GenerateSearchPrompt(searchInput string) string {
	return fmt.Sprintf("task: search result | query: %s", searchInput)
}

// defaultEmbeddingGenerator is a fallback implementation of EmbeddingGenerator
// that generates simple prompts without model-specific formatting.
type defaultEmbeddingGenerator struct{}

func (d defaultEmbeddingGenerator) GenerateToolDefinitionPrompt(tool domain.ToolDefinition) string {
	return fmt.Sprintf("%s: %s", tool.Name, tool.Description)
}

func (d defaultEmbeddingGenerator) GenerateSearchPrompt(searchInput string) string {
	return searchInput
}
