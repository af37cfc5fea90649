package domain

// ProgressStatus identifies one kind of progress event emitted while an
// orchestration run advances.
type ProgressStatus string

const (
	ProgressStatus_Thinking      ProgressStatus = "thinking"
	ProgressStatus_ToolExecuting ProgressStatus = "tool_executing"
	ProgressStatus_ToolComplete  ProgressStatus = "tool_complete"
	ProgressStatus_Finalizing    ProgressStatus = "finalizing"
	ProgressStatus_Done          ProgressStatus = "done"
	ProgressStatus_Error         ProgressStatus = "error"
)

// ProgressEvent is one frame of the progress stream. Data carries
// status-specific detail: the tool name and call id for tool events, the full
// RunResult for done, a failure description for error.
type ProgressEvent struct {
	Status  ProgressStatus
	Message string
	Data    any
}

// ProgressCallback receives progress events in the exact order the run's
// state transitions occur. Returning an error stops the run at the next safe
// checkpoint.
type ProgressCallback func(event ProgressEvent) error
