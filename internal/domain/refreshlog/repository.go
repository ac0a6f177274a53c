package refreshlog

import "context"

// Repository reads the backend refresh logs.
type Repository interface {
	// LatestPhases returns the newest row per source by occurred_at.
	LatestPhases(ctx context.Context) (map[Source]PhaseLogRow, error)
	LatestPaths(ctx context.Context) (map[Path]PathLogRow, error)
	LatestDeadlineBatch(ctx context.Context) (DeadlineBatchRun, bool, error)
}

// Sink appends telemetry rows. Both tables are append-only.
type Sink interface {
	AppendSnapshots(ctx context.Context, rows []SnapshotRow) error
	AppendFrontendDurations(ctx context.Context, rows []FrontendDurationRow) error
}
