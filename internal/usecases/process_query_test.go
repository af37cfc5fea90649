package usecases

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexrag/aigateway/internal/domain"
)

var fixedTime = time.Date(2026, 1, 24, 15, 0, 0, 0, time.UTC)

type fixedTimeProvider struct{}

func (fixedTimeProvider) Now() time.Time { return fixedTime }

// scriptedModelClient replays a fixed sequence of model turns and records
// every query it receives.
type scriptedModelClient struct {
	mu      sync.Mutex
	turns   []domain.ModelTurn
	errs    []error
	queries []domain.ModelQuery
}

func (c *scriptedModelClient) Query(_ context.Context, query domain.ModelQuery) (domain.ModelTurn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queries = append(c.queries, query)
	i := len(c.queries) - 1
	if i < len(c.errs) && c.errs[i] != nil {
		return domain.ModelTurn{}, c.errs[i]
	}
	if i >= len(c.turns) {
		return domain.ModelTurn{}, domain.NewModelTransportErr("script exhausted")
	}
	return c.turns[i], nil
}

func (c *scriptedModelClient) AvailableModels(context.Context) ([]domain.ModelInfo, error) {
	return nil, nil
}

type fakeEncoder struct {
	vector []float64
	err    error
}

func (f fakeEncoder) VectorizeQuery(context.Context, string, string) (domain.EmbeddingVector, error) {
	return domain.EmbeddingVector{Vector: f.vector, TotalTokens: 3}, f.err
}

func (f fakeEncoder) VectorizeToolDefinition(context.Context, string, domain.ToolDefinition) (domain.EmbeddingVector, error) {
	return domain.EmbeddingVector{Vector: f.vector}, f.err
}

type fakeToolRegistry struct {
	defs []domain.ToolDefinition
}

func (r fakeToolRegistry) Lookup(name string) (domain.ToolDefinition, bool) {
	for _, def := range r.defs {
		if def.Name == name {
			return def, true
		}
	}
	return domain.ToolDefinition{}, false
}

func (r fakeToolRegistry) List() []domain.ToolDefinition { return r.defs }

func (r fakeToolRegistry) ListRelevant(context.Context, string) []domain.ToolDefinition {
	return r.defs
}

func (r fakeToolRegistry) StatusMessage(toolName string) string { return "running " + toolName }

func (r fakeToolRegistry) CompleteMessage(toolName string) string { return "done " + toolName }

// fakeToolExecutor resolves every call through fn and counts invocations.
type fakeToolExecutor struct {
	mu    sync.Mutex
	fn    func(call domain.ToolCall) domain.ToolExecutionResult
	calls []domain.ToolCall
}

func (e *fakeToolExecutor) Execute(_ context.Context, _ string, call domain.ToolCall) domain.ToolExecutionResult {
	e.mu.Lock()
	e.calls = append(e.calls, call)
	e.mu.Unlock()

	if e.fn != nil {
		return e.fn(call)
	}
	return domain.ToolExecutionResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Status:     domain.ToolStatus_OK,
		Payload:    `{"result":"` + call.Name + `"}`,
	}
}

type memChatRepo struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
}

func (r *memChatRepo) CreateChatMessage(_ context.Context, message domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *memChatRepo) ListChatMessages(_ context.Context, userID string, limit int, since time.Time) ([]domain.ChatMessage, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []domain.ChatMessage{}
	for _, msg := range r.messages {
		if msg.UserID == userID && (since.IsZero() || msg.CreatedAt.After(since)) {
			matched = append(matched, msg)
		}
	}
	if limit > 0 && len(matched) > limit {
		return matched[len(matched)-limit:], true, nil
	}
	return matched, false, nil
}

func (r *memChatRepo) SearchChatMessages(context.Context, string, []float64, int) ([]domain.ChatMessage, error) {
	return nil, nil
}

func (r *memChatRepo) TrimConversation(_ context.Context, userID string, keep int) error {
	return nil
}

func (r *memChatRepo) DeleteConversation(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.messages[:0]
	for _, msg := range r.messages {
		if msg.UserID != userID {
			kept = append(kept, msg)
		}
	}
	r.messages = kept
	return nil
}

type memOutbox struct {
	mu         sync.Mutex
	chatEvents []domain.ChatMessageEvent
	runEvents  []domain.RunCompletedEvent
}

func (o *memOutbox) CreateChatEvent(_ context.Context, event domain.ChatMessageEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.chatEvents = append(o.chatEvents, event)
	return nil
}

func (o *memOutbox) CreateRunEvent(_ context.Context, event domain.RunCompletedEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runEvents = append(o.runEvents, event)
	return nil
}

func (o *memOutbox) FetchPendingEvents(context.Context, int) ([]domain.OutboxEvent, error) {
	return nil, nil
}

func (o *memOutbox) UpdateEvent(context.Context, uuid.UUID, domain.OutboxStatus, int, string) error {
	return nil
}

func (o *memOutbox) DeleteEvent(context.Context, uuid.UUID) error { return nil }

type memUnitOfWork struct {
	repo   *memChatRepo
	outbox *memOutbox
}

func (u *memUnitOfWork) ChatMessage() domain.ChatMessageRepository { return u.repo }
func (u *memUnitOfWork) Outbox() domain.OutboxRepository           { return u.outbox }
func (u *memUnitOfWork) Execute(_ context.Context, fn func(uow domain.UnitOfWork) error) error {
	return fn(u)
}

// progressRecorder captures progress events and optionally fails on a status.
type progressRecorder struct {
	events []domain.ProgressEvent
	failOn domain.ProgressStatus
	err    error
}

func (r *progressRecorder) callback(event domain.ProgressEvent) error {
	r.events = append(r.events, event)
	if r.failOn != "" && event.Status == r.failOn {
		return r.err
	}
	return nil
}

func (r *progressRecorder) statuses() []domain.ProgressStatus {
	statuses := make([]domain.ProgressStatus, len(r.events))
	for i, e := range r.events {
		statuses[i] = e.Status
	}
	return statuses
}

func (r *progressRecorder) countStatus(status domain.ProgressStatus) int {
	count := 0
	for _, e := range r.events {
		if e.Status == status {
			count++
		}
	}
	return count
}

type processQueryFixture struct {
	repo     *memChatRepo
	outbox   *memOutbox
	client   *scriptedModelClient
	executor *fakeToolExecutor
}

func newProcessQuery(f *processQueryFixture, maxToolCalls int) ProcessQueryImpl {
	registry := fakeToolRegistry{defs: []domain.ToolDefinition{
		{Name: "analyze_gene", Description: "gene analysis"},
		{Name: "search_literature", Description: "literature search"},
	}}
	return NewProcessQueryImpl(
		f.repo,
		&memUnitOfWork{repo: f.repo, outbox: f.outbox},
		fixedTimeProvider{},
		f.client,
		fakeEncoder{vector: []float64{0.1, 0.2}},
		registry,
		f.executor,
		log.New(io.Discard, "", 0),
		"embed-model",
		maxToolCalls,
		4,
		20,
	)
}

func newFixture(turns []domain.ModelTurn, errs []error) *processQueryFixture {
	return &processQueryFixture{
		repo:     &memChatRepo{},
		outbox:   &memOutbox{},
		client:   &scriptedModelClient{turns: turns, errs: errs},
		executor: &fakeToolExecutor{},
	}
}

func toolRequestTurn(calls ...domain.ToolCall) domain.ModelTurn {
	return domain.ModelTurn{
		Kind:      domain.ModelTurnKind_ToolRequest,
		ToolCalls: calls,
		Usage:     domain.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func finalAnswerTurn(text string) domain.ModelTurn {
	return domain.ModelTurn{
		Kind:  domain.ModelTurnKind_FinalAnswer,
		Text:  text,
		Usage: domain.TokenUsage{PromptTokens: 20, CompletionTokens: 8, TotalTokens: 28},
	}
}

func TestProcessQueryImpl_Execute_DirectAnswer(t *testing.T) {
	f := newFixture([]domain.ModelTurn{finalAnswerTurn("Hello! How can I help?")}, nil)
	pq := newProcessQuery(f, 12)
	rec := &progressRecorder{}

	result, err := pq.Execute(t.Context(), "user-1", "hi there", "test-model", rec.callback)

	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help?", result.ResponseText)
	assert.Equal(t, domain.ConfidenceLevel_High, result.ConfidenceLevel)
	assert.Equal(t, 1, result.IterationsUsed)
	assert.Empty(t, result.ToolsExecuted)

	assert.Equal(t, []domain.ProgressStatus{
		domain.ProgressStatus_Thinking,
		domain.ProgressStatus_Finalizing,
		domain.ProgressStatus_Done,
	}, rec.statuses())

	// user and assistant messages persisted, with outbox events
	require.Len(t, f.repo.messages, 2)
	assert.Equal(t, domain.ChatRole_User, f.repo.messages[0].ChatRole)
	assert.Equal(t, domain.ChatRole_Assistant, f.repo.messages[1].ChatRole)
	assert.Len(t, f.outbox.chatEvents, 2)
	require.Len(t, f.outbox.runEvents, 1)
	assert.Equal(t, domain.RunStatus_Done, f.outbox.runEvents[0].Status)
}

func TestProcessQueryImpl_Execute_ToolCycle(t *testing.T) {
	f := newFixture([]domain.ModelTurn{
		toolRequestTurn(
			domain.ToolCall{ID: "call-1", Name: "analyze_gene", Arguments: `{"gene_symbol":"BRCA1"}`},
			domain.ToolCall{ID: "call-2", Name: "search_literature", Arguments: `{"topic":"BRCA1"}`},
		),
		finalAnswerTurn("BRCA1 is a tumor suppressor gene."),
	}, nil)
	pq := newProcessQuery(f, 12)
	rec := &progressRecorder{}

	result, err := pq.Execute(t.Context(), "user-1", "what is BRCA1?", "test-model", rec.callback)

	require.NoError(t, err)
	assert.Equal(t, domain.ConfidenceLevel_High, result.ConfidenceLevel)
	assert.Equal(t, 2, result.IterationsUsed)
	assert.Equal(t, []string{"analyze_gene", "search_literature"}, result.ToolsExecuted)

	assert.Equal(t, 2, rec.countStatus(domain.ProgressStatus_ToolExecuting))
	assert.Equal(t, 2, rec.countStatus(domain.ProgressStatus_ToolComplete))
	assert.Equal(t, 1, rec.countStatus(domain.ProgressStatus_Done))

	// The second model query must carry the tool cycle: assistant tool-call
	// message followed by one tool result per call, in request order.
	require.Len(t, f.client.queries, 2)
	messages := f.client.queries[1].Messages
	require.GreaterOrEqual(t, len(messages), 3)
	tail := messages[len(messages)-3:]
	assert.Equal(t, domain.ChatRole_Assistant, tail[0].Role)
	require.Len(t, tail[0].ToolCalls, 2)
	require.NotNil(t, tail[1].ToolCallID)
	assert.Equal(t, "call-1", *tail[1].ToolCallID)
	require.NotNil(t, tail[2].ToolCallID)
	assert.Equal(t, "call-2", *tail[2].ToolCallID)
}

func TestProcessQueryImpl_Execute_ResultsInRequestOrder(t *testing.T) {
	f := newFixture([]domain.ModelTurn{
		toolRequestTurn(
			domain.ToolCall{ID: "call-slow", Name: "analyze_gene", Arguments: `{"gene_symbol":"TP53"}`},
			domain.ToolCall{ID: "call-fast", Name: "search_literature", Arguments: `{"topic":"TP53"}`},
		),
		finalAnswerTurn("done"),
	}, nil)
	f.executor.fn = func(call domain.ToolCall) domain.ToolExecutionResult {
		if call.ID == "call-slow" {
			time.Sleep(50 * time.Millisecond)
		}
		return domain.ToolExecutionResult{
			ToolCallID: call.ID,
			Name:       call.Name,
			Status:     domain.ToolStatus_OK,
			Payload:    `{"id":"` + call.ID + `"}`,
		}
	}
	pq := newProcessQuery(f, 12)

	_, err := pq.Execute(t.Context(), "user-1", "analyze TP53", "test-model", (&progressRecorder{}).callback)

	require.NoError(t, err)
	messages := f.client.queries[1].Messages
	tail := messages[len(messages)-2:]
	// The slow call finished last but its result still comes first.
	assert.Equal(t, "call-slow", *tail[0].ToolCallID)
	assert.Contains(t, tail[0].Content, "call-slow")
	assert.Equal(t, "call-fast", *tail[1].ToolCallID)
}

func TestProcessQueryImpl_Execute_ToolCompleteStreamsPerCall(t *testing.T) {
	f := newFixture([]domain.ModelTurn{
		toolRequestTurn(
			domain.ToolCall{ID: "call-slow", Name: "analyze_gene", Arguments: `{"gene_symbol":"TP53"}`},
			domain.ToolCall{ID: "call-fast", Name: "search_literature", Arguments: `{"topic":"TP53"}`},
		),
		finalAnswerTurn("done"),
	}, nil)

	fastCompleted := make(chan struct{})
	slowSawFast := false
	f.executor.fn = func(call domain.ToolCall) domain.ToolExecutionResult {
		if call.ID == "call-slow" {
			select {
			case <-fastCompleted:
				slowSawFast = true
			case <-time.After(2 * time.Second):
			}
		}
		return domain.ToolExecutionResult{
			ToolCallID: call.ID,
			Name:       call.Name,
			Status:     domain.ToolStatus_OK,
			Payload:    `{"id":"` + call.ID + `"}`,
		}
	}
	pq := newProcessQuery(f, 12)
	rec := &progressRecorder{}

	_, err := pq.Execute(t.Context(), "user-1", "analyze TP53", "test-model", func(event domain.ProgressEvent) error {
		if event.Status == domain.ProgressStatus_ToolComplete {
			if data, ok := event.Data.(map[string]any); ok && data["call_id"] == "call-fast" {
				close(fastCompleted)
			}
		}
		return rec.callback(event)
	})

	require.NoError(t, err)
	// The fast call's completion event reaches the caller while the slow
	// sibling of the same batch is still running.
	assert.True(t, slowSawFast, "completion of the fast call was only emitted after the whole batch resolved")
	assert.Equal(t, 2, rec.countStatus(domain.ProgressStatus_ToolComplete))
}

func TestProcessQueryImpl_Execute_ToolFailuresAbsorbed(t *testing.T) {
	f := newFixture([]domain.ModelTurn{
		toolRequestTurn(domain.ToolCall{ID: "call-1", Name: "analyze_gene", Arguments: `{}`}),
		finalAnswerTurn("I could not retrieve gene data."),
	}, nil)
	f.executor.fn = func(call domain.ToolCall) domain.ToolExecutionResult {
		return domain.ToolExecutionResult{
			ToolCallID: call.ID,
			Name:       call.Name,
			Status:     domain.ToolStatus_Error,
			Payload:    `{"error":"upstream_error","status_code":503}`,
		}
	}
	pq := newProcessQuery(f, 12)
	rec := &progressRecorder{}

	result, err := pq.Execute(t.Context(), "user-1", "analyze my genes", "test-model", rec.callback)

	require.NoError(t, err)
	assert.Equal(t, domain.ConfidenceLevel_Medium, result.ConfidenceLevel)
	assert.Equal(t, []string{"analyze_gene"}, result.ToolsExecuted)
	assert.Equal(t, 1, rec.countStatus(domain.ProgressStatus_Done))

	// The failure payload is appended as a tool message, not surfaced as an error.
	messages := f.client.queries[1].Messages
	assert.Contains(t, messages[len(messages)-1].Content, "upstream_error")
}

func TestProcessQueryImpl_Execute_ForcedFinalization(t *testing.T) {
	turns := []domain.ModelTurn{
		toolRequestTurn(domain.ToolCall{ID: "call-1", Name: "analyze_gene", Arguments: `{"gene_symbol":"A"}`}),
		toolRequestTurn(domain.ToolCall{ID: "call-2", Name: "analyze_gene", Arguments: `{"gene_symbol":"B"}`}),
		finalAnswerTurn("Best effort answer from gathered data."),
	}
	f := newFixture(turns, nil)
	pq := newProcessQuery(f, 2)
	rec := &progressRecorder{}

	result, err := pq.Execute(t.Context(), "user-1", "deep analysis please", "test-model", rec.callback)

	require.NoError(t, err)
	assert.Equal(t, domain.ConfidenceLevel_Low, result.ConfidenceLevel)
	assert.Equal(t, 3, result.IterationsUsed)
	assert.Equal(t, "Best effort answer from gathered data.", result.ResponseText)

	// The finalization query must disable tools and carry the budget note.
	require.Len(t, f.client.queries, 3)
	finalQuery := f.client.queries[2]
	assert.Empty(t, finalQuery.Tools)
	noteFound := false
	for _, msg := range finalQuery.Messages {
		if msg.Role == domain.ChatRole_System && strings.Contains(msg.Content, "tool call limit") {
			noteFound = true
		}
	}
	assert.True(t, noteFound)
	assert.Equal(t, 1, rec.countStatus(domain.ProgressStatus_Finalizing))
	assert.Equal(t, 1, rec.countStatus(domain.ProgressStatus_Done))
}

func TestProcessQueryImpl_Execute_EmptyForcedAnswer(t *testing.T) {
	turns := []domain.ModelTurn{
		toolRequestTurn(domain.ToolCall{ID: "call-1", Name: "analyze_gene", Arguments: `{"gene_symbol":"A"}`}),
		finalAnswerTurn("   "),
	}
	f := newFixture(turns, nil)
	pq := newProcessQuery(f, 1)
	rec := &progressRecorder{}

	_, err := pq.Execute(t.Context(), "user-1", "analyze", "test-model", rec.callback)

	var emptyErr *domain.EmptyAnswerErr
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, 1, rec.countStatus(domain.ProgressStatus_Error))
	assert.Zero(t, rec.countStatus(domain.ProgressStatus_Done))
	require.Len(t, f.outbox.runEvents, 1)
	assert.Equal(t, domain.RunStatus_Errored, f.outbox.runEvents[0].Status)
}

func TestProcessQueryImpl_Execute_ModelTransportError(t *testing.T) {
	f := newFixture(nil, []error{domain.NewModelTransportErr("connection refused")})
	pq := newProcessQuery(f, 12)
	rec := &progressRecorder{}

	_, err := pq.Execute(t.Context(), "user-1", "hello", "test-model", rec.callback)

	var transportErr *domain.ModelTransportErr
	require.ErrorAs(t, err, &transportErr)

	// Exactly one terminal event, and it is the error event.
	assert.Equal(t, 1, rec.countStatus(domain.ProgressStatus_Error))
	assert.Zero(t, rec.countStatus(domain.ProgressStatus_Done))
	require.Len(t, f.outbox.runEvents, 1)
	assert.Equal(t, domain.RunStatus_Errored, f.outbox.runEvents[0].Status)
}

func TestProcessQueryImpl_Execute_CallbackErrorStopsRun(t *testing.T) {
	f := newFixture([]domain.ModelTurn{
		toolRequestTurn(domain.ToolCall{ID: "call-1", Name: "analyze_gene", Arguments: `{}`}),
		finalAnswerTurn("never delivered"),
	}, nil)
	pq := newProcessQuery(f, 12)
	rec := &progressRecorder{failOn: domain.ProgressStatus_ToolExecuting, err: errors.New("client gone")}

	_, err := pq.Execute(t.Context(), "user-1", "analyze", "test-model", rec.callback)

	require.EqualError(t, err, "client gone")
	// The run stopped before dispatching the tool call batch.
	assert.Empty(t, f.executor.calls)
}

func TestProcessQueryImpl_Execute_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	f := newFixture([]domain.ModelTurn{finalAnswerTurn("unused")}, nil)
	pq := newProcessQuery(f, 12)
	rec := &progressRecorder{}
	cancel()

	_, err := pq.Execute(ctx, "user-1", "hello", "test-model", rec.callback)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, rec.countStatus(domain.ProgressStatus_Error))
}

func TestProcessQueryImpl_Execute_CancellationBetweenIterations(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	f := newFixture([]domain.ModelTurn{
		toolRequestTurn(domain.ToolCall{ID: "call-1", Name: "analyze_gene", Arguments: `{"gene_symbol":"A"}`}),
		finalAnswerTurn("never delivered"),
	}, nil)
	f.executor.fn = func(call domain.ToolCall) domain.ToolExecutionResult {
		cancel()
		return domain.ToolExecutionResult{
			ToolCallID: call.ID,
			Name:       call.Name,
			Status:     domain.ToolStatus_OK,
			Payload:    `{}`,
		}
	}
	pq := newProcessQuery(f, 12)
	rec := &progressRecorder{}

	_, err := pq.Execute(ctx, "user-1", "analyze", "test-model", rec.callback)

	require.ErrorIs(t, err, context.Canceled)
	// The first iteration completed; no model call is made for the next one.
	assert.Len(t, f.client.queries, 1)
	assert.Equal(t, 1, rec.countStatus(domain.ProgressStatus_Error))
	assert.Zero(t, rec.countStatus(domain.ProgressStatus_Done))
}

func TestProcessQueryImpl_Execute_RepeatedCallGuard(t *testing.T) {
	repeated := domain.ToolCall{Name: "analyze_gene", Arguments: `{"gene_symbol":"BRCA1"}`}
	turns := []domain.ModelTurn{}
	for i := 0; i < 5; i++ {
		call := repeated
		call.ID = "call-" + string(rune('a'+i))
		turns = append(turns, toolRequestTurn(call))
	}
	turns = append(turns, finalAnswerTurn("giving up on repeats"))
	f := newFixture(turns, nil)
	pq := newProcessQuery(f, 12)

	result, err := pq.Execute(t.Context(), "user-1", "analyze BRCA1", "test-model", (&progressRecorder{}).callback)

	require.NoError(t, err)
	// Identical calls stop reaching the executor once the repeat budget is hit.
	assert.Less(t, len(f.executor.calls), len(result.ToolsExecuted))
}

func TestProcessQueryImpl_Execute_Validation(t *testing.T) {
	f := newFixture(nil, nil)
	pq := newProcessQuery(f, 12)

	tests := map[string]struct {
		userID string
		query  string
		model  string
	}{
		"empty user id": {userID: "", query: "hi", model: "m"},
		"empty query":   {userID: "u", query: "   ", model: "m"},
		"empty model":   {userID: "u", query: "hi", model: ""},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := pq.Execute(t.Context(), tc.userID, tc.query, tc.model, nil)
			var validationErr *domain.ValidationErr
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestProcessQueryImpl_Execute_HistoryReplayed(t *testing.T) {
	f := newFixture([]domain.ModelTurn{finalAnswerTurn("ok")}, nil)
	f.repo.messages = []domain.ChatMessage{
		{UserID: "user-1", ChatRole: domain.ChatRole_User, Content: "earlier question", CreatedAt: fixedTime.Add(-time.Hour)},
		{UserID: "user-1", ChatRole: domain.ChatRole_Assistant, Content: "earlier answer", CreatedAt: fixedTime.Add(-time.Hour)},
		{UserID: "user-2", ChatRole: domain.ChatRole_User, Content: "someone else", CreatedAt: fixedTime.Add(-time.Hour)},
	}
	pq := newProcessQuery(f, 12)

	_, err := pq.Execute(t.Context(), "user-1", "follow up", "test-model", nil)

	require.NoError(t, err)
	messages := f.client.queries[0].Messages
	contents := make([]string, 0, len(messages))
	for _, msg := range messages {
		contents = append(contents, msg.Content)
	}
	assert.Contains(t, contents, "earlier question")
	assert.Contains(t, contents, "earlier answer")
	assert.NotContains(t, contents, "someone else")
	assert.Equal(t, "follow up", messages[len(messages)-1].Content)
	// System prompt leads the conversation and carries the tool overview.
	assert.Equal(t, domain.ChatRole_System, messages[0].Role)
	assert.Contains(t, messages[0].Content, "analyze_gene")
}

func TestToolCycleTracker(t *testing.T) {
	tracker := newToolCycleTracker(3)

	assert.False(t, tracker.hasExceededRepeatedCalls("analyze_gene", `{"g":"A"}`))
	assert.False(t, tracker.hasExceededRepeatedCalls("analyze_gene", `{"g":"A"}`))
	assert.False(t, tracker.hasExceededRepeatedCalls("analyze_gene", `{"g":"A"}`))
	assert.True(t, tracker.hasExceededRepeatedCalls("analyze_gene", `{"g":"A"}`))

	// A different signature resets the counter.
	assert.False(t, tracker.hasExceededRepeatedCalls("analyze_gene", `{"g":"B"}`))
	assert.False(t, tracker.hasExceededRepeatedCalls("analyze_gene", `{"g":"A"}`))
}
