package usecases

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lexrag/aigateway/internal/domain"
)

var (
	meter          = otel.Meter("usecases")
	LLMTokensUsed  metric.Int64Counter
	ToolExecutions metric.Int64Counter
	RunsCompleted  metric.Int64Counter
)

func init() {
	var err error
	// Tokens consumed by LLM (input + output)
	LLMTokensUsed, err = meter.Int64Counter(
		"llm_tokens_used_total",
		metric.WithDescription("Total LLM tokens consumed"),
	)
	if err != nil {
		panic(err)
	}

	ToolExecutions, err = meter.Int64Counter(
		"tool_executions_total",
		metric.WithDescription("Total tool executions by tool name and status"),
	)
	if err != nil {
		panic(err)
	}

	RunsCompleted, err = meter.Int64Counter(
		"runs_total",
		metric.WithDescription("Total orchestration runs by terminal status"),
	)
	if err != nil {
		panic(err)
	}
}

// RecordLLMTokensUsed records the number of tokens used in an LLM chat operation.
func RecordLLMTokensUsed(ctx context.Context, promptTokens, completionTokens int) {
	LLMTokensUsed.Add(ctx, int64(promptTokens), metric.WithAttributes(
		attribute.String("token_type", "prompt"),
	))
	LLMTokensUsed.Add(ctx, int64(completionTokens), metric.WithAttributes(
		attribute.String("token_type", "completion"),
	))
}

// RecordLLMTokensEmbedding records the number of tokens used in an embedding operation.
func RecordLLMTokensEmbedding(ctx context.Context, totalTokens int) {
	LLMTokensUsed.Add(ctx, int64(totalTokens), metric.WithAttributes(
		attribute.String("token_type", "embedding"),
	))
}

// RecordToolExecution records the outcome of one tool execution.
func RecordToolExecution(ctx context.Context, result domain.ToolExecutionResult) {
	ToolExecutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", result.Name),
		attribute.String("status", string(result.Status)),
	))
}

// RecordRunCompleted records one terminated orchestration run.
func RecordRunCompleted(ctx context.Context, status domain.RunStatus, confidence domain.ConfidenceLevel) {
	RunsCompleted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", string(status)),
		attribute.String("confidence", string(confidence)),
	))
}
