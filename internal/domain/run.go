package domain

import "github.com/google/uuid"

// RunStatus represents a state of the orchestration state machine.
type RunStatus string

const (
	RunStatus_Init             RunStatus = "INIT"
	RunStatus_QueryingModel    RunStatus = "QUERYING_MODEL"
	RunStatus_ToolExecuting    RunStatus = "TOOL_EXECUTING"
	RunStatus_AppendingResults RunStatus = "APPENDING_RESULTS"
	RunStatus_Finalizing       RunStatus = "FINALIZING"
	RunStatus_Done             RunStatus = "DONE"
	RunStatus_Errored          RunStatus = "ERRORED"
)

// IsTerminal returns true for the two terminal states.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatus_Done || s == RunStatus_Errored
}

// ConfidenceLevel is a coarse signal of how much trust to place in a run's
// final answer.
type ConfidenceLevel string

const (
	ConfidenceLevel_High   ConfidenceLevel = "high"
	ConfidenceLevel_Medium ConfidenceLevel = "medium"
	ConfidenceLevel_Low    ConfidenceLevel = "low"
)

// RunResult is the terminal outcome of a completed orchestration run.
type RunResult struct {
	ResponseText    string
	ToolsExecuted   []string
	IterationsUsed  int
	ConfidenceLevel ConfidenceLevel
}

// OrchestrationRun tracks one complete cycle from a user message to a final
// answer. The run's conversation is owned exclusively by the run's goroutine
// and is append-only; once a terminal status is reached the run is never
// mutated again.
type OrchestrationRun struct {
	RunID         uuid.UUID
	UserID        string
	Conversation  []Message
	Iteration     int
	ToolsExecuted []string
	Status        RunStatus
	Result        *RunResult
}
