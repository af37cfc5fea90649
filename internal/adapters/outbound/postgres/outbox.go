package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/lexrag/aigateway/internal/domain"
	"github.com/lexrag/aigateway/internal/telemetry"
)

var outboxEventFields = []string{
	"id",
	"entity_type",
	"entity_id",
	"topic",
	"event_type",
	"payload",
	"status",
	"retry_count",
	"max_retries",
	"last_error",
	"created_at",
}

const outboxMaxRetries = 5

// OutboxRepository persists domain events for the transactional outbox.
type OutboxRepository struct {
	sb           squirrel.StatementBuilderType
	timeProvider domain.CurrentTimeProvider
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(br squirrel.BaseRunner, timeProvider domain.CurrentTimeProvider) OutboxRepository {
	return OutboxRepository{
		sb:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).RunWith(br),
		timeProvider: timeProvider,
	}
}

// CreateChatEvent records a new chat message event in the outbox.
func (op OutboxRepository) CreateChatEvent(ctx context.Context, event domain.ChatMessageEvent) error {
	return op.insertEvent(ctx,
		domain.OutboxEntityType_ChatMessage,
		event.ChatMessageID,
		domain.OutboxTopic_ChatMessages,
		event.Type,
		event,
	)
}

// CreateRunEvent records a new run audit event in the outbox.
func (op OutboxRepository) CreateRunEvent(ctx context.Context, event domain.RunCompletedEvent) error {
	return op.insertEvent(ctx,
		domain.OutboxEntityType_Run,
		event.RunID,
		domain.OutboxTopic_RunAudit,
		event.Type,
		event,
	)
}

func (op OutboxRepository) insertEvent(
	ctx context.Context,
	entityType domain.OutboxEntityType,
	entityID uuid.UUID,
	topic domain.OutboxTopic,
	eventType domain.EventType,
	payload any,
) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	payloadJSON, err := json.Marshal(payload)
	if telemetry.RecordErrorAndStatus(span, err) {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	_, err = op.sb.Insert("outbox_events").
		Columns(outboxEventFields...).
		Values(
			uuid.New(),
			entityType,
			entityID,
			topic,
			eventType,
			payloadJSON,
			domain.OutboxStatus_Pending,
			0,
			outboxMaxRetries,
			nil,
			op.timeProvider.Now(),
		).
		ExecContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// FetchPendingEvents retrieves a batch of pending outbox events from the database.
func (op OutboxRepository) FetchPendingEvents(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	rows, err := op.sb.
		Select(outboxEventFields...).
		From("outbox_events").
		Where(squirrel.Eq{"status": domain.OutboxStatus_Pending}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var events []domain.OutboxEvent
	for rows.Next() {
		var oe domain.OutboxEvent
		err := rows.Scan(
			&oe.ID,
			&oe.EntityType,
			&oe.EntityID,
			&oe.Topic,
			&oe.EventType,
			&oe.Payload,
			&oe.Status,
			&oe.RetryCount,
			&oe.MaxRetries,
			&oe.LastError,
			&oe.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		events = append(events, oe)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// UpdateEvent updates the status, retry count, and last error of an outbox event.
func (op OutboxRepository) UpdateEvent(ctx context.Context, eventID uuid.UUID, status domain.OutboxStatus, retryCount int, lastError string) error {
	_, err := op.sb.
		Update("outbox_events").
		Set("status", status).
		Set("retry_count", retryCount).
		Set("last_error", lastError).
		Where(squirrel.Eq{"id": eventID}).
		ExecContext(ctx)

	return err
}

// DeleteEvent deletes an outbox event from the database.
func (op OutboxRepository) DeleteEvent(ctx context.Context, eventID uuid.UUID) error {
	_, err := op.sb.
		Delete("outbox_events").
		Where(squirrel.Eq{"id": eventID}).
		ExecContext(ctx)

	return err
}
