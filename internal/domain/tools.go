package domain

import (
	"context"
	"sort"
)

// ToolStatus represents the outcome of one tool execution.
type ToolStatus string

const (
	ToolStatus_OK      ToolStatus = "ok"
	ToolStatus_Error   ToolStatus = "error"
	ToolStatus_Timeout ToolStatus = "timeout"
)

// ToolCall is a model-issued request to invoke a specific tool. Arguments is
// the raw JSON string exactly as the model produced it.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolExecutionResult is the uniform envelope every tool execution resolves
// to. Executions never fail with an error value; all failure modes are folded
// into the Status tag so the orchestration loop can always continue.
type ToolExecutionResult struct {
	ToolCallID string
	Name       string
	Status     ToolStatus
	Payload    string
	DurationMS int64
}

// IsSuccess returns true when the execution completed with an ok status.
func (r ToolExecutionResult) IsSuccess() bool {
	return r.Status == ToolStatus_OK
}

// ToolParameterDetail describes a single parameter in a tool's schema.
type ToolParameterDetail struct {
	Type        string
	Description string
	Required    bool
}

// ToolParameters is the JSON-schema object describing a tool's arguments.
type ToolParameters struct {
	Type       string
	Properties map[string]ToolParameterDetail
}

// ToolBinding maps a tool invocation onto one HTTP operation of an external
// service. Path segments of the form {param} are filled from the tool
// arguments; QueryParams lists argument names passed as query parameters.
// The {user_id} segment is always filled from the authenticated request
// path, never from model arguments.
type ToolBinding struct {
	Service     string
	Method      string
	Path        string
	QueryParams []string
}

// ToolDefinition describes one callable tool: its schema as presented to the
// model and its binding to an external HTTP operation.
type ToolDefinition struct {
	Name            string
	Description     string
	Parameters      ToolParameters
	Binding         ToolBinding
	ProgressMessage string
	CompleteMessage string
}

// RequiredParameters returns the names of the required parameters in stable
// order.
func (d ToolDefinition) RequiredParameters() []string {
	required := []string{}
	for _, name := range sortedKeys(d.Parameters.Properties) {
		if d.Parameters.Properties[name].Required {
			required = append(required, name)
		}
	}
	return required
}

func sortedKeys(m map[string]ToolParameterDetail) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToolRegistry is the read-only tool catalog, loaded once at process start
// and immutable afterwards.
type ToolRegistry interface {
	// Lookup returns the definition registered under name.
	Lookup(name string) (ToolDefinition, bool)
	// List returns all registered tools in a stable order.
	List() []ToolDefinition
	// ListRelevant returns the tools most relevant to the given user input,
	// falling back to the full catalog when relevance cannot be computed.
	ListRelevant(ctx context.Context, userInput string) []ToolDefinition
	// StatusMessage returns a friendly progress message for the given tool name.
	StatusMessage(toolName string) string
	// CompleteMessage returns a friendly completion message for the given tool name.
	CompleteMessage(toolName string) string
}

// ToolExecutor performs one bound HTTP call per tool call and normalizes the
// outcome. Implementations never return an error; see ToolExecutionResult.
type ToolExecutor interface {
	Execute(ctx context.Context, userID string, call ToolCall) ToolExecutionResult
}
