package outbox

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database/sqlite"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/migrations"
)

func newTestRepository(t *testing.T) (*SQLRepository, database.Connection) {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "outbox.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = migrations.Run(ctx, conn)
	require.NoError(t, err)
	return NewSQLRepository(conn), conn
}

func newRepoMessage(aggregateID string, createdAt time.Time) *Message {
	return &Message{
		EventID:       uuid.New(),
		AggregateType: "Project",
		AggregateID:   aggregateID,
		EventType:     "project.synced",
		RoutingKey:    "project.synced",
		Payload:       []byte(`{"aggregate_id":"` + aggregateID + `"}`),
		Metadata:      []byte(`{"correlation_id":"00000000-0000-0000-0000-000000000000"}`),
		CreatedAt:     createdAt,
	}
}

func TestSQLRepository_SaveAndGetUnpublished(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	second := newRepoMessage("2", base.Add(time.Minute))
	first := newRepoMessage("1", base)
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, first))
	assert.NotZero(t, first.ID)

	msgs, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "1", msgs[0].AggregateID)
	assert.Equal(t, first.EventID, msgs[0].EventID)
	assert.JSONEq(t, string(first.Payload), string(msgs[0].Payload))
	assert.True(t, base.Equal(msgs[0].CreatedAt))

	limited, err := repo.GetUnpublished(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	published := newRepoMessage("1", now)
	failed := newRepoMessage("2", now)
	dead := newRepoMessage("3", now)
	for _, m := range []*Message{published, failed, dead} {
		require.NoError(t, repo.Save(ctx, m))
	}

	require.NoError(t, repo.MarkPublished(ctx, published.ID))
	require.NoError(t, repo.MarkFailed(ctx, failed.ID, "broker unreachable", now.Add(time.Minute)))
	require.NoError(t, repo.MarkDead(ctx, dead.ID, "too many retries"))

	pending, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	msgs, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs, "failed message is not due yet")

	now = now.Add(2 * time.Minute)
	msgs, err = repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, failed.ID, msgs[0].ID)
	assert.Equal(t, 1, msgs[0].RetryCount)
	require.NotNil(t, msgs[0].LastError)
	assert.Equal(t, "broker unreachable", *msgs[0].LastError)
}

func TestSQLRepository_JoinsTransaction(t *testing.T) {
	ctx := context.Background()
	repo, conn := newTestRepository(t)
	uow := database.NewUnitOfWork(conn)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Save(txCtx, newRepoMessage("1", time.Now())))
	require.NoError(t, uow.Rollback(txCtx))

	pending, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestSQLRepository_DeleteOld(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	old := newRepoMessage("1", now.Add(-96*time.Hour))
	recent := newRepoMessage("2", now)
	require.NoError(t, repo.Save(ctx, old))
	require.NoError(t, repo.Save(ctx, recent))

	repo.now = func() time.Time { return now.Add(-96 * time.Hour) }
	require.NoError(t, repo.MarkPublished(ctx, old.ID))
	repo.now = func() time.Time { return now }
	require.NoError(t, repo.MarkPublished(ctx, recent.ID))

	deleted, err := repo.DeleteOld(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
