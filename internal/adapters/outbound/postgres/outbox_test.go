package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexrag/aigateway/internal/domain"
)

type stubTimeProvider struct {
	now time.Time
}

func (s stubTimeProvider) Now() time.Time { return s.now }

const outboxInsertSQL = "INSERT INTO outbox_events (id,entity_type,entity_id,topic,event_type,payload,status,retry_count,max_retries,last_error,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)"

func TestOutboxRepository_CreateChatEvent(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NoError(t, err)
	defer db.Close() // nolint:errcheck

	fixedTime := time.Date(2026, 1, 24, 12, 0, 0, 0, time.UTC)
	messageID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	mock.ExpectExec(outboxInsertSQL).
		WithArgs(
			sqlmock.AnyArg(),
			domain.OutboxEntityType_ChatMessage,
			messageID,
			domain.OutboxTopic_ChatMessages,
			domain.EventType_CHAT_MESSAGE_SENT,
			sqlmock.AnyArg(),
			domain.OutboxStatus_Pending,
			0,
			5,
			nil,
			fixedTime,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewOutboxRepository(db, stubTimeProvider{now: fixedTime})
	err = repo.CreateChatEvent(context.Background(), domain.ChatMessageEvent{
		Type:          domain.EventType_CHAT_MESSAGE_SENT,
		ChatRole:      domain.ChatRole_User,
		ChatMessageID: messageID,
		UserID:        "user-1",
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_CreateRunEvent(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NoError(t, err)
	defer db.Close() // nolint:errcheck

	fixedTime := time.Date(2026, 1, 24, 12, 0, 0, 0, time.UTC)
	runID := uuid.MustParse("223e4567-e89b-12d3-a456-426614174001")

	mock.ExpectExec(outboxInsertSQL).
		WithArgs(
			sqlmock.AnyArg(),
			domain.OutboxEntityType_Run,
			runID,
			domain.OutboxTopic_RunAudit,
			domain.EventType_RUN_COMPLETED,
			sqlmock.AnyArg(),
			domain.OutboxStatus_Pending,
			0,
			5,
			nil,
			fixedTime,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewOutboxRepository(db, stubTimeProvider{now: fixedTime})
	err = repo.CreateRunEvent(context.Background(), domain.RunCompletedEvent{
		Type:            domain.EventType_RUN_COMPLETED,
		RunID:           runID,
		UserID:          "user-1",
		Status:          domain.RunStatus_Done,
		ToolsExecuted:   []string{"analyze_gene"},
		IterationsUsed:  2,
		ConfidenceLevel: domain.ConfidenceLevel_High,
		CompletedAt:     fixedTime,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_FetchPendingEvents(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NoError(t, err)
	defer db.Close() // nolint:errcheck

	eventID := uuid.MustParse("323e4567-e89b-12d3-a456-426614174002")
	entityID := uuid.MustParse("423e4567-e89b-12d3-a456-426614174003")
	createdAt := time.Date(2026, 1, 24, 12, 0, 0, 0, time.UTC)

	columns := []string{"id", "entity_type", "entity_id", "topic", "event_type", "payload", "status", "retry_count", "max_retries", "last_error", "created_at"}
	mock.ExpectQuery("SELECT id, entity_type, entity_id, topic, event_type, payload, status, retry_count, max_retries, last_error, created_at FROM outbox_events WHERE status = $1 ORDER BY created_at ASC LIMIT 100 FOR UPDATE SKIP LOCKED").
		WithArgs(domain.OutboxStatus_Pending).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(
				eventID.String(),
				domain.OutboxEntityType_Run,
				entityID.String(),
				domain.OutboxTopic_RunAudit,
				domain.EventType_RUN_COMPLETED,
				[]byte(`{"run_id":"r1"}`),
				domain.OutboxStatus_Pending,
				1,
				5,
				nil,
				createdAt,
			))

	repo := NewOutboxRepository(db, stubTimeProvider{})
	events, err := repo.FetchPendingEvents(context.Background(), 100)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, eventID, events[0].ID)
	assert.Equal(t, domain.OutboxTopic_RunAudit, events[0].Topic)
	assert.Equal(t, 1, events[0].RetryCount)
	assert.Nil(t, events[0].LastError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_UpdateEvent(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NoError(t, err)
	defer db.Close() // nolint:errcheck

	eventID := uuid.MustParse("323e4567-e89b-12d3-a456-426614174002")
	mock.ExpectExec("UPDATE outbox_events SET status = $1, retry_count = $2, last_error = $3 WHERE id = $4").
		WithArgs(domain.OutboxStatus_Failed, 5, "broker unavailable", eventID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewOutboxRepository(db, stubTimeProvider{})
	err = repo.UpdateEvent(context.Background(), eventID, domain.OutboxStatus_Failed, 5, "broker unavailable")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_DeleteEvent(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NoError(t, err)
	defer db.Close() // nolint:errcheck

	eventID := uuid.MustParse("323e4567-e89b-12d3-a456-426614174002")
	mock.ExpectExec("DELETE FROM outbox_events WHERE id = $1").
		WithArgs(eventID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewOutboxRepository(db, stubTimeProvider{})
	err = repo.DeleteEvent(context.Background(), eventID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
