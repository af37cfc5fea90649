package usecases

import (
	"context"
	"embed"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
	"github.com/toon-format/toon-go"
	"go.opentelemetry.io/otel/trace"
	"go.yaml.in/yaml/v3"

	"github.com/lexrag/aigateway/internal/common"
	"github.com/lexrag/aigateway/internal/domain"
	"github.com/lexrag/aigateway/internal/telemetry"
)

const (
	// Number of persisted messages replayed into the model context
	HISTORY_REPLAY_MESSAGES = 10

	// Maximum number of identical tool call repeats before the call is refused
	MAX_REPEATED_TOOL_CALL_HIT = 3

	CHAT_TEMPERATURE = 0.5
)

//go:embed prompts/chat.yml
var chatPrompt embed.FS

// forcedFinalizationNote is injected when the tool budget is exhausted and
// the model must answer with whatever it has gathered.
const forcedFinalizationNote = "You have reached the tool call limit. " +
	"Provide your best final answer now using only the information already gathered. " +
	"Do not request any more tools."

// ProcessQuery defines the interface for the ProcessQuery use case
type ProcessQuery interface {
	// Execute drives one orchestration run from a user query to a final
	// answer, reporting progress through onProgress as the run advances.
	Execute(ctx context.Context, userID, query, model string, onProgress domain.ProgressCallback) (domain.RunResult, error)
}

// ProcessQueryImpl is the implementation of the ProcessQuery use case
type ProcessQueryImpl struct {
	chatMessageRepo  domain.ChatMessageRepository
	uow              domain.UnitOfWork
	timeProvider     domain.CurrentTimeProvider
	modelClient      domain.ModelClient
	encoder          domain.SemanticEncoder
	registry         domain.ToolRegistry
	executor         domain.ToolExecutor
	logger           *log.Logger
	embeddingModel   string
	maxToolCalls     int
	maxParallelTools int
	historyWindow    int
}

// NewProcessQueryImpl creates a new instance of ProcessQueryImpl
func NewProcessQueryImpl(
	chatMessageRepo domain.ChatMessageRepository,
	uow domain.UnitOfWork,
	timeProvider domain.CurrentTimeProvider,
	modelClient domain.ModelClient,
	encoder domain.SemanticEncoder,
	registry domain.ToolRegistry,
	executor domain.ToolExecutor,
	logger *log.Logger,
	embeddingModel string,
	maxToolCalls int,
	maxParallelTools int,
	historyWindow int,
) ProcessQueryImpl {
	return ProcessQueryImpl{
		chatMessageRepo:  chatMessageRepo,
		uow:              uow,
		timeProvider:     timeProvider,
		modelClient:      modelClient,
		encoder:          encoder,
		registry:         registry,
		executor:         executor,
		logger:           logger,
		embeddingModel:   embeddingModel,
		maxToolCalls:     maxToolCalls,
		maxParallelTools: maxParallelTools,
		historyWindow:    historyWindow,
	}
}

// Execute drives one orchestration run from a user query to a final answer.
func (pq ProcessQueryImpl) Execute(ctx context.Context, userID, query, model string, onProgress domain.ProgressCallback) (domain.RunResult, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	if userID == "" {
		return domain.RunResult{}, domain.NewValidationErr("user id cannot be empty")
	}
	if strings.TrimSpace(query) == "" {
		return domain.RunResult{}, domain.NewValidationErr("query cannot be empty")
	}
	if model == "" {
		return domain.RunResult{}, domain.NewValidationErr("model cannot be empty")
	}

	run := &domain.OrchestrationRun{
		RunID:  uuid.New(),
		UserID: userID,
		Status: domain.RunStatus_Init,
	}

	conversation, err := pq.buildConversation(spanCtx, userID, query)
	if telemetry.RecordErrorAndStatus(span, err) {
		return domain.RunResult{}, err
	}
	run.Conversation = conversation

	userMsg := domain.ChatMessage{
		ID:        uuid.New(),
		UserID:    userID,
		ChatRole:  domain.ChatRole_User,
		Content:   query,
		Model:     model,
		Embedding: pq.vectorize(spanCtx, query),
		CreatedAt: pq.timeProvider.Now(),
	}
	if err := pq.persistChatMessage(spanCtx, userMsg); telemetry.RecordErrorAndStatus(span, err) {
		return domain.RunResult{}, err
	}

	emitter := newProgressEmitter(onProgress)
	if err := emitter.emit(domain.ProgressStatus_Thinking, "🤔 Analyzing your question..."); err != nil {
		return domain.RunResult{}, err
	}

	relevantTools := pq.registry.ListRelevant(spanCtx, query)
	tracker := newToolCycleTracker(MAX_REPEATED_TOOL_CALL_HIT)

	var (
		usage         domain.TokenUsage
		finalText     string
		forced        bool
		toolSucceeded bool
	)

	for {
		if err := spanCtx.Err(); err != nil {
			return pq.failRun(spanCtx, span, run, emitter, err)
		}

		run.Status = domain.RunStatus_QueryingModel
		run.Iteration++

		modelQuery := domain.ModelQuery{
			Model:       model,
			Messages:    run.Conversation,
			Tools:       relevantTools,
			Temperature: common.Ptr(CHAT_TEMPERATURE),
		}
		if run.Iteration > pq.maxToolCalls {
			forced = true
			run.Status = domain.RunStatus_Finalizing
			run.Conversation = append(run.Conversation, domain.Message{
				Role:    domain.ChatRole_System,
				Content: forcedFinalizationNote,
			})
			modelQuery.Messages = run.Conversation
			modelQuery.Tools = nil
			if err := emitter.emit(domain.ProgressStatus_Finalizing, "✍️ Wrapping up with the data gathered so far..."); err != nil {
				return domain.RunResult{}, err
			}
		}

		turn, err := pq.modelClient.Query(spanCtx, modelQuery)
		if err != nil {
			return pq.failRun(spanCtx, span, run, emitter, err)
		}
		usage.PromptTokens += turn.Usage.PromptTokens
		usage.CompletionTokens += turn.Usage.CompletionTokens
		usage.TotalTokens += turn.Usage.TotalTokens

		if forced || turn.Kind == domain.ModelTurnKind_FinalAnswer {
			if forced && strings.TrimSpace(turn.Text) == "" {
				return pq.failRun(spanCtx, span, run, emitter,
					domain.NewEmptyAnswerErr("model produced no answer after tool budget was exhausted"))
			}
			finalText = turn.Text
			break
		}

		run.Status = domain.RunStatus_ToolExecuting
		results, err := pq.runToolCalls(spanCtx, run, turn.ToolCalls, tracker, emitter)
		if err != nil {
			return domain.RunResult{}, err
		}

		run.Status = domain.RunStatus_AppendingResults
		run.Conversation = append(run.Conversation, domain.Message{
			Role:      domain.ChatRole_Assistant,
			ToolCalls: turn.ToolCalls,
		})
		for i := range turn.ToolCalls {
			if results[i].IsSuccess() {
				toolSucceeded = true
			}
			run.Conversation = append(run.Conversation, domain.Message{
				Role:       domain.ChatRole_Tool,
				ToolCallID: common.Ptr(turn.ToolCalls[i].ID),
				Content:    results[i].Payload,
			})
		}
	}

	if !forced {
		run.Status = domain.RunStatus_Finalizing
		if err := emitter.emit(domain.ProgressStatus_Finalizing, "✍️ Formulating final answer..."); err != nil {
			return domain.RunResult{}, err
		}
	}

	confidence := domain.ConfidenceLevel_High
	switch {
	case forced:
		confidence = domain.ConfidenceLevel_Low
	case len(run.ToolsExecuted) > 0 && !toolSucceeded:
		confidence = domain.ConfidenceLevel_Medium
	}

	result := domain.RunResult{
		ResponseText:    finalText,
		ToolsExecuted:   run.ToolsExecuted,
		IterationsUsed:  run.Iteration,
		ConfidenceLevel: confidence,
	}
	run.Result = &result
	run.Status = domain.RunStatus_Done

	assistantMsg := domain.ChatMessage{
		ID:               uuid.New(),
		UserID:           userID,
		ChatRole:         domain.ChatRole_Assistant,
		Content:          finalText,
		Model:            model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		Embedding:        pq.vectorize(spanCtx, finalText),
		CreatedAt:        pq.timeProvider.Now(),
	}
	if err := pq.persistChatMessage(spanCtx, assistantMsg); telemetry.RecordErrorAndStatus(span, err) {
		return domain.RunResult{}, err
	}
	if err := pq.recordRunAudit(spanCtx, run, confidence); err != nil {
		pq.logger.Printf("run audit failed for run %s: %v", run.RunID, err)
	}

	RecordLLMTokensUsed(spanCtx, usage.PromptTokens, usage.CompletionTokens)
	RecordRunCompleted(spanCtx, domain.RunStatus_Done, confidence)

	if err := emitter.emitTerminal(domain.ProgressStatus_Done, "✅ Analysis complete", result); err != nil {
		return result, err
	}
	return result, nil
}

// failRun transitions the run to ERRORED, emits the terminal error event and
// records the audit trail before surfacing the cause to the caller.
func (pq ProcessQueryImpl) failRun(
	ctx context.Context,
	span trace.Span,
	run *domain.OrchestrationRun,
	emitter *progressEmitter,
	cause error,
) (domain.RunResult, error) {
	run.Status = domain.RunStatus_Errored
	telemetry.RecordErrorAndStatus(span, cause)

	// The audit write must survive a canceled request context.
	auditCtx := context.WithoutCancel(ctx)
	RecordRunCompleted(auditCtx, domain.RunStatus_Errored, domain.ConfidenceLevel_Low)
	if err := pq.recordRunAudit(auditCtx, run, domain.ConfidenceLevel_Low); err != nil {
		pq.logger.Printf("run audit failed for run %s: %v", run.RunID, err)
	}

	if err := emitter.emitTerminal(domain.ProgressStatus_Error, cause.Error(), nil); err != nil {
		pq.logger.Printf("terminal progress event dropped for run %s: %v", run.RunID, err)
	}
	return domain.RunResult{}, cause
}

// runToolCalls executes one batch of model-requested tool calls with bounded
// parallelism. Completion events stream as each call resolves; the returned
// results keep the order the model requested the calls in.
func (pq ProcessQueryImpl) runToolCalls(
	ctx context.Context,
	run *domain.OrchestrationRun,
	calls []domain.ToolCall,
	tracker *toolCycleTracker,
	emitter *progressEmitter,
) ([]domain.ToolExecutionResult, error) {
	for _, call := range calls {
		err := emitter.emitData(
			domain.ProgressStatus_ToolExecuting,
			pq.registry.StatusMessage(call.Name),
			map[string]any{"tool": call.Name, "call_id": call.ID},
		)
		if err != nil {
			return nil, err
		}
	}

	results := make([]domain.ToolExecutionResult, len(calls))
	// Buffered so workers never block on an aborted batch.
	resolved := make(chan int, len(calls))
	sem := make(chan struct{}, pq.maxParallelTools)
	pending := 0
	for i, call := range calls {
		if tracker.hasExceededRepeatedCalls(call.Name, call.Arguments) {
			results[i] = domain.ToolExecutionResult{
				ToolCallID: call.ID,
				Name:       call.Name,
				Status:     domain.ToolStatus_Error,
				Payload:    `{"error":"repeated_call","detail":"identical tool call repeated too many times"}`,
			}
			if err := pq.emitToolComplete(ctx, emitter, call, results[i]); err != nil {
				return nil, err
			}
			continue
		}

		pending++
		go func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = pq.executor.Execute(ctx, run.UserID, call)
			resolved <- i
		}()
	}

	// The callback stays on this goroutine, so a fast call's completion is
	// visible while its slower siblings are still running.
	for ; pending > 0; pending-- {
		i := <-resolved
		if err := pq.emitToolComplete(ctx, emitter, calls[i], results[i]); err != nil {
			return nil, err
		}
	}

	for _, call := range calls {
		run.ToolsExecuted = append(run.ToolsExecuted, call.Name)
	}
	return results, nil
}

// emitToolComplete records the execution metric and reports one resolved
// tool call to the caller.
func (pq ProcessQueryImpl) emitToolComplete(
	ctx context.Context,
	emitter *progressEmitter,
	call domain.ToolCall,
	result domain.ToolExecutionResult,
) error {
	RecordToolExecution(ctx, result)

	message := pq.registry.CompleteMessage(call.Name)
	if !result.IsSuccess() {
		message = fmt.Sprintf("⚠️ %s did not return usable data", call.Name)
	}
	return emitter.emitData(
		domain.ProgressStatus_ToolComplete,
		message,
		map[string]any{
			"tool":        call.Name,
			"call_id":     call.ID,
			"success":     result.IsSuccess(),
			"duration_ms": result.DurationMS,
		},
	)
}

// buildConversation assembles system prompt, replayed history and the
// current user turn into the initial model context.
func (pq ProcessQueryImpl) buildConversation(ctx context.Context, userID, query string) ([]domain.Message, error) {
	messages, err := pq.buildSystemPrompt()
	if err != nil {
		return nil, err
	}

	history, _, err := pq.chatMessageRepo.ListChatMessages(ctx, userID, HISTORY_REPLAY_MESSAGES, time.Time{})
	if err != nil {
		return nil, err
	}

	// Remove orphaned tool messages from the start of the replayed window
	for len(history) > 0 && history[0].ChatRole == domain.ChatRole_Tool {
		history = history[1:]
	}

	for _, msg := range history {
		if msg.ChatRole == domain.ChatRole_System {
			continue
		}
		messages = append(messages, domain.Message{
			Role:    msg.ChatRole,
			Content: msg.Content,
		})
	}

	messages = append(messages, domain.Message{
		Role:    domain.ChatRole_User,
		Content: query,
	})
	return messages, nil
}

// toolCatalogEntry is the compact tool description rendered into the system
// prompt overview.
type toolCatalogEntry struct {
	Name        string
	Description string
	Required    []string
}

// buildSystemPrompt creates the base chat prompt and injects the current
// date plus a compact overview of the tool catalog.
func (pq ProcessQueryImpl) buildSystemPrompt() ([]domain.Message, error) {
	file, err := chatPrompt.Open("prompts/chat.yml")
	if err != nil {
		return nil, fmt.Errorf("failed to open chat prompt: %w", err)
	}
	defer file.Close() //nolint:errcheck

	messages := []domain.Message{}
	if err := yaml.NewDecoder(file).Decode(&messages); err != nil {
		return nil, fmt.Errorf("failed to decode chat prompt: %w", err)
	}

	entries := []toolCatalogEntry{}
	for _, def := range pq.registry.List() {
		entries = append(entries, toolCatalogEntry{
			Name:        def.Name,
			Description: def.Description,
			Required:    def.RequiredParameters(),
		})
	}
	catalogOverview, err := toon.MarshalString(entries, toon.WithLengthMarkers(true))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool overview: %w", err)
	}

	now := pq.timeProvider.Now()
	for i, msg := range messages {
		if msg.Role == domain.ChatRole_System {
			messages[i].Content = fmt.Sprintf(
				msg.Content,
				now.Format(time.DateOnly),
				catalogOverview,
			)
		}
	}
	return messages, nil
}

// vectorize generates a semantic vector for persisting alongside a chat
// message. Embedding failures are logged and never block the run.
func (pq ProcessQueryImpl) vectorize(ctx context.Context, text string) []float64 {
	if pq.embeddingModel == "" || strings.TrimSpace(text) == "" {
		return nil
	}

	vec, err := pq.encoder.VectorizeQuery(ctx, pq.embeddingModel, text)
	if err != nil {
		pq.logger.Printf("message embedding failed: %v", err)
		return nil
	}
	RecordLLMTokensEmbedding(ctx, vec.TotalTokens)
	return vec.Vector
}

// persistChatMessage persists one chat message, emits the corresponding
// outbox event and trims the conversation to the configured window.
func (pq ProcessQueryImpl) persistChatMessage(ctx context.Context, message domain.ChatMessage) error {
	return pq.uow.Execute(ctx, func(uow domain.UnitOfWork) error {
		if err := uow.ChatMessage().CreateChatMessage(ctx, message); err != nil {
			return err
		}

		if err := uow.Outbox().CreateChatEvent(ctx, domain.ChatMessageEvent{
			Type:          domain.EventType_CHAT_MESSAGE_SENT,
			ChatRole:      message.ChatRole,
			ChatMessageID: message.ID,
			UserID:        message.UserID,
		}); err != nil {
			return err
		}

		return uow.ChatMessage().TrimConversation(ctx, message.UserID, pq.historyWindow)
	})
}

// recordRunAudit stores the terminal run event in the outbox.
func (pq ProcessQueryImpl) recordRunAudit(ctx context.Context, run *domain.OrchestrationRun, confidence domain.ConfidenceLevel) error {
	return pq.uow.Execute(ctx, func(uow domain.UnitOfWork) error {
		return uow.Outbox().CreateRunEvent(ctx, domain.RunCompletedEvent{
			Type:            domain.EventType_RUN_COMPLETED,
			RunID:           run.RunID,
			UserID:          run.UserID,
			Status:          run.Status,
			ToolsExecuted:   run.ToolsExecuted,
			IterationsUsed:  run.Iteration,
			ConfidenceLevel: confidence,
			CompletedAt:     pq.timeProvider.Now(),
		})
	})
}

// progressEmitter forwards progress events to the caller and guarantees at
// most one terminal event per run.
type progressEmitter struct {
	onProgress   domain.ProgressCallback
	terminalSent bool
}

func newProgressEmitter(onProgress domain.ProgressCallback) *progressEmitter {
	return &progressEmitter{onProgress: onProgress}
}

func (e *progressEmitter) emit(status domain.ProgressStatus, message string) error {
	return e.emitData(status, message, nil)
}

func (e *progressEmitter) emitData(status domain.ProgressStatus, message string, data any) error {
	if e.onProgress == nil {
		return nil
	}
	return e.onProgress(domain.ProgressEvent{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func (e *progressEmitter) emitTerminal(status domain.ProgressStatus, message string, data any) error {
	if e.terminalSent {
		return nil
	}
	e.terminalSent = true
	return e.emitData(status, message, data)
}

// toolCycleTracker refuses identical tool calls repeated back to back,
// which keeps weaker models from burning the tool budget in a loop.
type toolCycleTracker struct {
	maxRepeatedHit  int
	lastSignature   string
	repeatCallCount int
}

func newToolCycleTracker(maxRepeatedHit int) *toolCycleTracker {
	return &toolCycleTracker{maxRepeatedHit: maxRepeatedHit}
}

// hasExceededRepeatedCalls checks if the same tool call has been repeated too many times
func (t *toolCycleTracker) hasExceededRepeatedCalls(toolName, arguments string) bool {
	signature := toolName + ":" + arguments
	if signature == t.lastSignature {
		t.repeatCallCount++
		return t.repeatCallCount >= t.maxRepeatedHit
	}
	t.lastSignature = signature
	t.repeatCallCount = 0
	return false
}

// InitProcessQuery is the initializer for the ProcessQuery use case
type InitProcessQuery struct {
	ChatMessageRepo domain.ChatMessageRepository `resolve:""`
	Uow             domain.UnitOfWork            `resolve:""`
	TimeProvider    domain.CurrentTimeProvider   `resolve:""`
	ModelClient     domain.ModelClient           `resolve:""`
	SemanticEncoder domain.SemanticEncoder       `resolve:""`
	ToolRegistry    domain.ToolRegistry          `resolve:""`
	ToolExecutor    domain.ToolExecutor          `resolve:""`
	Logger          *log.Logger                  `resolve:""`
	EmbeddingModel  string                       `config:"EMBEDDING_MODEL"`
	// Maximum model iterations that may request tools in a single run.
	// One extra finalization query is allowed after the budget is spent.
	MaxToolCalls     int `config:"MAX_TOOL_CALLS" default:"12"`
	MaxParallelTools int `config:"MAX_PARALLEL_TOOLS" default:"4"`
	HistoryWindow    int `config:"HISTORY_WINDOW" default:"20"`
}

// Initialize registers the ProcessQuery use case in the dependency container
func (i InitProcessQuery) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[ProcessQuery](NewProcessQueryImpl(
		i.ChatMessageRepo,
		i.Uow,
		i.TimeProvider,
		i.ModelClient,
		i.SemanticEncoder,
		i.ToolRegistry,
		i.ToolExecutor,
		i.Logger,
		i.EmbeddingModel,
		i.MaxToolCalls,
		i.MaxParallelTools,
		i.HistoryWindow,
	))
	return ctx, nil
}
