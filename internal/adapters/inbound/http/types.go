package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/lexrag/aigateway/internal/domain"
)

// ErrorCode classifies an API error for clients.
type ErrorCode string

const (
	ErrorCode_BadRequest    ErrorCode = "BAD_REQUEST"
	ErrorCode_NotFound      ErrorCode = "NOT_FOUND"
	ErrorCode_InternalError ErrorCode = "INTERNAL_ERROR"
)

// Error is the error body of an ErrorResp.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorResp is the uniform error envelope for all endpoints.
type ErrorResp struct {
	Error Error `json:"error"`
}

// ChatRequest is the body of a chat request. Model is optional; the
// configured default model is used when it is empty.
type ChatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// ChatResponse carries the terminal outcome of a synchronous chat request.
type ChatResponse struct {
	ResponseText    string   `json:"response_text"`
	ToolsExecuted   []string `json:"tools_executed"`
	IterationsUsed  int      `json:"iterations_used"`
	ConfidenceLevel string   `json:"confidence_level"`
}

// ProgressFrame is one SSE frame of a streaming chat request.
type ProgressFrame struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ChatMessageResp is one persisted message of a user's conversation.
type ChatMessageResp struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatHistoryResp is the response body of the history endpoints.
type ChatHistoryResp struct {
	UserID   string            `json:"user_id"`
	Messages []ChatMessageResp `json:"messages"`
	HasMore  bool              `json:"has_more,omitempty"`
}

// ToolResp describes one catalog entry.
type ToolResp struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Service     string   `json:"service"`
	Required    []string `json:"required_parameters,omitempty"`
}

// ToolListResp is the response body of the tool catalog endpoint.
type ToolListResp struct {
	Tools []ToolResp `json:"tools"`
}

// ModelListResp is the response body of the model listing endpoint.
type ModelListResp struct {
	Models []string `json:"models"`
}

// HealthResp is the response body of the health endpoint.
type HealthResp struct {
	Status string `json:"status"`
}

func toError(err error) ErrorResp {
	errResp := ErrorResp{}
	switch e := err.(type) {
	case *domain.ValidationErr:
		errResp.Error.Code = ErrorCode_BadRequest
		errResp.Error.Message = e.Error()
	case *domain.NotFoundErr:
		errResp.Error.Code = ErrorCode_NotFound
		errResp.Error.Message = e.Error()
	default:
		errResp.Error.Code = ErrorCode_InternalError
		errResp.Error.Message = "internal server error"
	}
	return errResp
}

func toChatMessage(msg domain.ChatMessage) ChatMessageResp {
	return ChatMessageResp{
		ID:        msg.ID,
		Role:      string(msg.ChatRole),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func toChatResponse(result domain.RunResult) ChatResponse {
	return ChatResponse{
		ResponseText:    result.ResponseText,
		ToolsExecuted:   result.ToolsExecuted,
		IterationsUsed:  result.IterationsUsed,
		ConfidenceLevel: string(result.ConfidenceLevel),
	}
}
