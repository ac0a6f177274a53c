package tabular

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fpl-companion/internal/domain/refreshlog"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

type RefreshLogRepository struct {
	store store.Selector
}

func NewRefreshLogRepository(s store.Selector) *RefreshLogRepository {
	return &RefreshLogRepository{store: s}
}

// LatestPhases runs one newest-row select per source concurrently. A source
// without rows is absent from the result.
func (r *RefreshLogRepository) LatestPhases(ctx context.Context) (map[refreshlog.Source]refreshlog.PhaseLogRow, error) {
	var (
		mu  sync.Mutex
		out = make(map[refreshlog.Source]refreshlog.PhaseLogRow, len(refreshlog.Sources()))
	)

	p := pool.New().WithErrors().WithContext(ctx)
	for _, source := range refreshlog.Sources() {
		p.Go(func(ctx context.Context) error {
			rows, err := r.store.Select(ctx, store.Query{
				Table:   tablePhaseLog,
				Columns: phaseLogColumns,
				Where:   []store.Filter{store.Eq("source", string(source))},
				Order:   []store.Order{{Column: "occurred_at", Desc: true}},
				Limit:   1,
			})
			if err != nil {
				return fmt.Errorf("select latest %s phase: %w", source, err)
			}
			if len(rows) == 0 {
				return nil
			}

			phase := refreshlog.PhaseLogRow{
				Source:     source,
				OccurredAt: getTime(rows[0], "occurred_at"),
				Path:       refreshlog.Path(getString(rows[0], "path")),
				DurationMS: getInt(rows[0], "duration_ms"),
			}
			mu.Lock()
			out[source] = phase
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RefreshLogRepository) LatestPaths(ctx context.Context) (map[refreshlog.Path]refreshlog.PathLogRow, error) {
	out := make(map[refreshlog.Path]refreshlog.PathLogRow, 2)
	for _, path := range []refreshlog.Path{refreshlog.PathFast, refreshlog.PathSlow} {
		rows, err := r.store.Select(ctx, store.Query{
			Table:   tablePathLog,
			Columns: pathLogColumns,
			Where:   []store.Filter{store.Eq("path", string(path))},
			Order:   []store.Order{{Column: "occurred_at", Desc: true}},
			Limit:   1,
		})
		if err != nil {
			return nil, fmt.Errorf("select latest %s path: %w", path, err)
		}
		if len(rows) == 0 {
			continue
		}
		out[path] = refreshlog.PathLogRow{
			Path:       path,
			OccurredAt: getTime(rows[0], "occurred_at"),
			DurationMS: getInt(rows[0], "duration_ms"),
		}
	}
	return out, nil
}

func (r *RefreshLogRepository) LatestDeadlineBatch(ctx context.Context) (refreshlog.DeadlineBatchRun, bool, error) {
	rows, err := r.store.Select(ctx, store.Query{
		Table:   tableDeadlineBatchRuns,
		Columns: deadlineBatchColumns,
		Order:   []store.Order{{Column: "started_at", Desc: true}},
		Limit:   1,
	})
	if err != nil {
		return refreshlog.DeadlineBatchRun{}, false, fmt.Errorf("select latest deadline batch: %w", err)
	}
	if len(rows) == 0 {
		return refreshlog.DeadlineBatchRun{}, false, nil
	}

	row := rows[0]
	return refreshlog.DeadlineBatchRun{
		ID:              getInt(row, "id"),
		Gameweek:        getInt(row, "gameweek"),
		StartedAt:       getTime(row, "started_at"),
		FinishedAt:      getTimePtr(row, "finished_at"),
		DurationSeconds: getFloatPtr(row, "duration_seconds"),
		ManagerCount:    getIntPtr(row, "manager_count"),
		LeagueCount:     getIntPtr(row, "league_count"),
		Success:         getBoolPtr(row, "success"),
		PhaseBreakdown:  getMap(row, "phase_breakdown"),
	}, true, nil
}
