package domain

import "context"

// ModelTurnKind tags the outcome of a single model response.
type ModelTurnKind string

const (
	ModelTurnKind_FinalAnswer ModelTurnKind = "final_answer"
	ModelTurnKind_ToolRequest ModelTurnKind = "tool_request"
)

// ModelTurn is the parsed outcome of one chat completion: either a final
// textual answer or a list of requested tool calls, never both.
type ModelTurn struct {
	Kind      ModelTurnKind
	Text      string
	ToolCalls []ToolCall
	Usage     TokenUsage
}

// TokenUsage contains token usage information
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ModelQuery represents one chat-completion request to the model server.
type ModelQuery struct {
	Model    string
	Messages []Message
	// Tools presented to the model. Empty disables tool use for this query.
	Tools []ToolDefinition
	// Optional parameters.
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// ModelType distinguishes chat-capable from embedding-capable models.
type ModelType string

const (
	ModelType_Chat      ModelType = "chat"
	ModelType_Embedding ModelType = "embedding"
)

// ModelInfo describes one model advertised by the model server.
type ModelInfo struct {
	Name string
	Type ModelType
}

// ModelClient defines the interface for querying the language-model server.
type ModelClient interface {
	// Query sends the conversation plus the tool catalog to the model and
	// parses the response into a ModelTurn. A transport or parse failure is
	// returned as a ModelTransportErr and terminates the run.
	Query(ctx context.Context, query ModelQuery) (ModelTurn, error)

	// AvailableModels retrieves the list of models the server advertises.
	AvailableModels(ctx context.Context) ([]ModelInfo, error)
}
