package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/domain"
	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database/sqlite"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/migrations"
)

func setupTestRepo(t *testing.T) *ScheduleRepository {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "mirror.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = migrations.Run(ctx, conn)
	require.NoError(t, err)
	return NewScheduleRepository(conn)
}

func TestScheduleRepository_ReplaceAllAndList(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	require.NoError(t, repo.ReplaceAll(ctx, []domain.Schedule{
		{ID: 1, ProjectID: 10, BayID: 2, BayName: "Bay 2", StartDate: sharedDomain.MustParseDateValue("2024-05-01"), EndDate: sharedDomain.MustParseDateValue("2024-06-01"), Status: "scheduled"},
		{ID: 2, ProjectID: 11, BayID: 1, BayName: "Bay 1", StartDate: sharedDomain.MustParseDateValue("2024-04-01"), EndDate: sharedDomain.PendingDate(), Status: "in_progress"},
		{ID: 3, ProjectID: 10, BayID: 1, BayName: "Bay 1", StartDate: sharedDomain.MustParseDateValue("2024-02-01"), EndDate: sharedDomain.MustParseDateValue("2024-03-01"), Status: "complete"},
	}))

	all, err := repo.List(ctx, domain.ScheduleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, sharedDomain.DatePending, all[1].EndDate.Kind())

	bayOne, err := repo.List(ctx, domain.ScheduleFilter{BayID: 1})
	require.NoError(t, err)
	assert.Len(t, bayOne, 2)

	scoped, err := repo.List(ctx, domain.ScheduleFilter{BayID: 1, ProjectID: 10})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "complete", scoped[0].Status)
}

func TestScheduleRepository_ReplaceAllDropsStaleRows(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	require.NoError(t, repo.ReplaceAll(ctx, []domain.Schedule{{ID: 1, ProjectID: 1, BayID: 1}, {ID: 2, ProjectID: 2, BayID: 1}}))
	require.NoError(t, repo.ReplaceAll(ctx, []domain.Schedule{{ID: 3, ProjectID: 2, BayID: 4}}))

	all, err := repo.List(ctx, domain.ScheduleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(3), all[0].ID)

	require.NoError(t, repo.ReplaceAll(ctx, nil))
	all, err = repo.List(ctx, domain.ScheduleFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}
