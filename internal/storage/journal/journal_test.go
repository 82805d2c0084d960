package journal

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheet-sync/internal/config"
	"sheet-sync/internal/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	st, err := New(config.Journal{
		Driver: "sqlite3",
		DSN:    "file:" + t.Name() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func newRun(docID string, started time.Time) storage.Run {
	detail, _ := json.Marshal(map[string]any{"rows_processed": 3})
	return storage.Run{
		ID:         uuid.NewString(),
		Operation:  "sync_full",
		DocID:      docID,
		Status:     storage.StatusSuccess,
		Detail:     detail,
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
	}
}

func TestSaveAndGetRun(t *testing.T) {
	st := newTestStorage(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	run := newRun("mt-main", started)
	require.NoError(t, st.SaveRun(ctx, run))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "sync_full", got.Operation)
	assert.Equal(t, storage.StatusSuccess, got.Status)
	assert.JSONEq(t, `{"rows_processed":3}`, string(got.Detail))
	assert.True(t, started.Equal(got.StartedAt))
}

func TestGetRun_NotFound(t *testing.T) {
	st := newTestStorage(t)

	_, err := st.GetRun(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListAndPrune(t *testing.T) {
	st := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	old := newRun("mt-main", base)
	fresh := newRun("mt-main", base.Add(time.Hour))
	other := newRun("sk-main", base.Add(time.Hour))
	for _, r := range []storage.Run{old, fresh, other} {
		require.NoError(t, st.SaveRun(ctx, r))
	}

	runs, err := st.ListRuns(ctx, "mt-main", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, fresh.ID, runs[0].ID)
	assert.Equal(t, old.ID, runs[1].ID)

	n, err := st.Prune(ctx, base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = st.GetRun(ctx, old.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(config.Journal{Driver: "postgres", DSN: "x"})
	assert.Error(t, err)
}

func TestDriverDSN(t *testing.T) {
	// mysql без parseTime отдает DATETIME как []byte, поэтому флаг включается всегда
	dsn, err := driverDSN(config.Journal{Driver: "mysql", DSN: "user:password@tcp(localhost:3306)/sheet_sync"})
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "tcp(localhost:3306)/sheet_sync")

	dsn, err = driverDSN(config.Journal{Driver: "mysql", DSN: "user:password@tcp(localhost:3306)/sheet_sync?parseTime=false"})
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")

	// sqlite3 не трогаем
	dsn, err = driverDSN(config.Journal{Driver: "sqlite3", DSN: "file:journal.db?cache=shared"})
	require.NoError(t, err)
	assert.Equal(t, "file:journal.db?cache=shared", dsn)

	_, err = driverDSN(config.Journal{Driver: "mysql", DSN: "no-slash-here"})
	assert.Error(t, err)
}
