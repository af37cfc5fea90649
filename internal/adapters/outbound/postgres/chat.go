package postgres

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cleitonmarx/symbiont/depend"
	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lexrag/aigateway/internal/domain"
	"github.com/lexrag/aigateway/internal/telemetry"
)

var chatFields = []string{
	"id",
	"user_id",
	"chat_role",
	"content",
	"model",
	"prompt_tokens",
	"completion_tokens",
	"created_at",
}

// ChatMessageRepository persists per-user conversations in Postgres.
type ChatMessageRepository struct {
	sb squirrel.StatementBuilderType
}

// NewChatMessageRepository creates a new ChatMessageRepository.
func NewChatMessageRepository(br squirrel.BaseRunner) ChatMessageRepository {
	return ChatMessageRepository{
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).RunWith(br),
	}
}

// CreateChatMessage persists one chat message for a user's conversation.
func (r ChatMessageRepository) CreateChatMessage(ctx context.Context, message domain.ChatMessage) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	var embedding any
	if len(message.Embedding) > 0 {
		embedding = pgvector.NewVector(toFloat32(message.Embedding))
	}

	_, err := r.sb.
		Insert("ai_chat_messages").
		Columns(append(chatFields, "embedding")...).
		Values(
			message.ID,
			message.UserID,
			message.ChatRole,
			message.Content,
			message.Model,
			message.PromptTokens,
			message.CompletionTokens,
			message.CreatedAt,
			embedding,
		).
		ExecContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	return nil
}

// ListChatMessages retrieves messages for a user ordered by creation time.
// If limit > 0, returns up to the latest N messages; hasMore indicates if
// there are older messages. A non-zero since restricts the window to
// messages created after it.
func (r ChatMessageRepository) ListChatMessages(ctx context.Context, userID string, limit int, since time.Time) ([]domain.ChatMessage, bool, error) {
	spanCtx, span := telemetry.Start(ctx, trace.WithAttributes(
		attribute.Int("limit", limit),
	))
	defer span.End()

	qry := r.sb.
		Select(chatFields...).
		From("ai_chat_messages").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	if !since.IsZero() {
		qry = qry.Where(squirrel.Gt{"created_at": since})
	}
	if limit > 0 {
		qry = qry.Limit(uint64(limit + 1)) // fetch one extra to detect more
	}

	rows, err := qry.QueryContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, false, err
	}
	defer rows.Close() //nolint:errcheck

	msgs, err := scanChatMessages(rows)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, false, err
	}

	hasMore := false
	if limit > 0 && len(msgs) > limit {
		hasMore = true
		msgs = msgs[:limit]
	}

	// Currently ordered DESC; reverse to ASC for chronological order
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})

	return msgs, hasMore, nil
}

// SearchChatMessages ranks a user's embedded messages by cosine distance to
// the query vector, best match first.
func (r ChatMessageRepository) SearchChatMessages(ctx context.Context, userID string, queryVector []float64, limit int) ([]domain.ChatMessage, error) {
	spanCtx, span := telemetry.Start(ctx, trace.WithAttributes(
		attribute.Int("limit", limit),
	))
	defer span.End()

	qry := r.sb.
		Select(chatFields...).
		From("ai_chat_messages").
		Where(squirrel.Eq{"user_id": userID}).
		Where("embedding IS NOT NULL").
		OrderByClause("embedding <=> ?", pgvector.NewVector(toFloat32(queryVector)))

	if limit > 0 {
		qry = qry.Limit(uint64(limit))
	}

	rows, err := qry.QueryContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	msgs, err := scanChatMessages(rows)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	return msgs, nil
}

// TrimConversation drops the oldest messages of a user's conversation so
// that at most keep messages remain.
func (r ChatMessageRepository) TrimConversation(ctx context.Context, userID string, keep int) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	_, err := r.sb.
		Delete("ai_chat_messages").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Expr(
			"id NOT IN (SELECT id FROM ai_chat_messages WHERE user_id = ? ORDER BY created_at DESC LIMIT ?)",
			userID, keep,
		)).
		ExecContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	return nil
}

// DeleteConversation removes all messages for a user.
func (r ChatMessageRepository) DeleteConversation(ctx context.Context, userID string) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	_, err := r.sb.
		Delete("ai_chat_messages").
		Where(squirrel.Eq{"user_id": userID}).
		ExecContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	return nil
}

func scanChatMessages(rows *sql.Rows) ([]domain.ChatMessage, error) {
	var msgs []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.ChatRole,
			&m.Content,
			&m.Model,
			&m.PromptTokens,
			&m.CompletionTokens,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}

// InitChatMessageRepository is a Symbiont initializer for ChatMessageRepository.
type InitChatMessageRepository struct {
	DB *sql.DB `resolve:""`
}

// Initialize registers the ChatMessageRepository in the dependency container.
func (r InitChatMessageRepository) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[domain.ChatMessageRepository](NewChatMessageRepository(r.DB))
	return ctx, nil
}
