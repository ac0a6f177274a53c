package telemetrysink

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fpl-companion/internal/domain/refreshlog"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

const (
	tableSnapshotLog         = "refresh_snapshot_log"
	tableFrontendDurationLog = "refresh_frontend_duration_log"
)

// Store appends telemetry rows through any store driver that accepts writes.
type Store struct {
	appender store.Appender
}

func New(appender store.Appender) *Store {
	return &Store{appender: appender}
}

func (s *Store) AppendSnapshots(ctx context.Context, rows []refreshlog.SnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}

	out := make([]store.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.Row{
			"source":             string(row.Source),
			"state":              row.State,
			"since_backend_sec":  optionalFloat(row.SinceBackendSec),
			"since_frontend_sec": optionalFloat(row.SinceFrontendSec),
			"recorded_at":        row.RecordedAt.UTC(),
		})
	}
	if err := s.appender.Append(ctx, tableSnapshotLog, out); err != nil {
		return fmt.Errorf("append %d refresh snapshots: %w", len(rows), err)
	}
	return nil
}

func (s *Store) AppendFrontendDurations(ctx context.Context, rows []refreshlog.FrontendDurationRow) error {
	if len(rows) == 0 {
		return nil
	}

	out := make([]store.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.Row{
			"source":      string(row.Source),
			"state":       row.State,
			"query_key":   row.QueryKey,
			"duration_ms": row.DurationMS,
			"recorded_at": row.RecordedAt.UTC(),
		})
	}
	if err := s.appender.Append(ctx, tableFrontendDurationLog, out); err != nil {
		return fmt.Errorf("append %d frontend durations: %w", len(rows), err)
	}
	return nil
}

func optionalFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Nop discards every row. Used when snapshot logging is disabled.
type Nop struct{}

func (Nop) AppendSnapshots(context.Context, []refreshlog.SnapshotRow) error { return nil }

func (Nop) AppendFrontendDurations(context.Context, []refreshlog.FrontendDurationRow) error {
	return nil
}
