package repository

import (
	"context"
	"path/filepath"
	"teamstats/internal/database"
	"teamstats/internal/domain"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSnapshots(t *testing.T) *SnapshotRepository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "stats.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSnapshotRepository(db, zerolog.Nop())
}

func rosterWithEntry(timestamp string, twitter *int, daily int) domain.Roster {
	return domain.Roster{{TeamID: "t1", SubTeams: []domain.SubTeam{{Members: []domain.Member{
		{Name: "Alice", Twitter: "alice", Stats: []domain.StatsEntry{
			{Timestamp: timestamp, Week: "2024/01", Twitter: twitter, Gettr: "0", DailyCheckin: daily},
		}},
		{Name: "Bob", Stats: []domain.StatsEntry{
			{Timestamp: "2023/12/25/Mon", Week: "2023/52", Gettr: "0"},
		}},
	}}}}}
}

func TestSaveRunAndList(t *testing.T) {
	repo := newTestSnapshots(t)
	ctx := context.Background()
	count := 42

	first := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	run, err := repo.SaveRun(ctx, first, "2024/01/01/Mon", "2024/01", rosterWithEntry("2024/01/01/Mon", &count, 2))
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 1, run.Members)

	second := first.Add(7 * 24 * time.Hour)
	_, err = repo.SaveRun(ctx, second, "2024/01/08/Mon", "2024/02", rosterWithEntry("2024/01/08/Mon", nil, 5))
	require.NoError(t, err)

	history, err := repo.ListByMember(ctx, "Alice", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, run.ID, history[0].RunID)
	assert.Equal(t, "alice", history[0].TwitterHandle)
	require.NotNil(t, history[0].Entry.Twitter)
	assert.Equal(t, 42, *history[0].Entry.Twitter)
	assert.Equal(t, 2, history[0].Entry.DailyCheckin)

	assert.Nil(t, history[1].Entry.Twitter)
	assert.Equal(t, "2024/01/08/Mon", history[1].Entry.Timestamp)
	assert.Equal(t, "2024/02", history[1].Entry.Week)

	bob, err := repo.ListByMember(ctx, "Bob", 0)
	require.NoError(t, err)
	assert.Empty(t, bob)

	limited, err := repo.ListByMember(ctx, "Alice", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSnapshotRepositoryDisabled(t *testing.T) {
	repo := NewSnapshotRepository(nil, zerolog.Nop())
	assert.False(t, repo.Enabled())

	run, err := repo.SaveRun(context.Background(), time.Now(), "2024/01/01/Mon", "2024/01", nil)
	assert.NoError(t, err)
	assert.Nil(t, run)

	_, err = repo.ListByMember(context.Background(), "Alice", 0)
	assert.Error(t, err)
}
