package telemetrysink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fpl-companion/internal/domain/refreshlog"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

func TestStore_AppendSnapshots(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	sink := New(mem)
	at := time.Date(2025, 9, 13, 15, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	since := 12.5

	err := sink.AppendSnapshots(context.Background(), []refreshlog.SnapshotRow{
		{Source: refreshlog.SourceFixtures, State: "live_matches", SinceBackendSec: &since, RecordedAt: at},
		{Source: refreshlog.SourceMVs, State: "live_matches", RecordedAt: at},
	})
	require.NoError(t, err)

	rows := mem.Rows(tableSnapshotLog)
	require.Len(t, rows, 2)
	assert.Equal(t, "fixtures", rows[0]["source"])
	assert.Equal(t, 12.5, rows[0]["since_backend_sec"])
	assert.Nil(t, rows[0]["since_frontend_sec"])
	assert.Equal(t, time.UTC, rows[0]["recorded_at"].(time.Time).Location())
}

func TestStore_AppendFrontendDurations(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	err := New(mem).AppendFrontendDurations(context.Background(), []refreshlog.FrontendDurationRow{
		{Source: refreshlog.SourceGWPlayers, State: "idle", QueryKey: "stats:all:{}", DurationMS: 310, RecordedAt: time.Now()},
	})
	require.NoError(t, err)

	rows := mem.Rows(tableFrontendDurationLog)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(310), rows[0]["duration_ms"])
	assert.Equal(t, "stats:all:{}", rows[0]["query_key"])
}

func TestStore_EmptyBatchSkipsWrite(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	mem.SetError(tableSnapshotLog, errors.New("should not be called"))

	require.NoError(t, New(mem).AppendSnapshots(context.Background(), nil))
}

func TestStore_WrapsAppendError(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	mem.SetError(tableFrontendDurationLog, store.Transient(errors.New("connection reset")))

	err := New(mem).AppendFrontendDurations(context.Background(), []refreshlog.FrontendDurationRow{{Source: refreshlog.SourceFixtures, RecordedAt: time.Now()}})
	require.Error(t, err)
	assert.True(t, store.IsTransient(err))
}
