package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fpl-companion/internal/domain/refreshlog"
)

// PhaseReport is the payload of phases:latest. PathLevel is set when the
// phase log was unavailable and rows were expanded from the path log.
type PhaseReport struct {
	Phases    map[refreshlog.Source]refreshlog.PhaseLogRow
	PathLevel bool
}

func (s *QueryService) fetchPhases(ctx context.Context) (PhaseReport, error) {
	phases, err := s.refreshLogs.LatestPhases(ctx)
	if err == nil {
		return PhaseReport{Phases: phases}, nil
	}
	if !s.isPermanent(err) {
		return PhaseReport{}, err
	}

	s.logger.WarnContext(ctx, "phase log unavailable, falling back to path log", "error", err)
	paths, pathErr := s.refreshLogs.LatestPaths(ctx)
	if pathErr != nil {
		return PhaseReport{}, fmt.Errorf("phase log unavailable (%v), read path log: %w", err, pathErr)
	}
	return PhaseReport{Phases: expandPaths(paths), PathLevel: true}, nil
}

// expandPaths attaches each path's latest run to the sources refreshed on it.
func expandPaths(paths map[refreshlog.Path]refreshlog.PathLogRow) map[refreshlog.Source]refreshlog.PhaseLogRow {
	out := make(map[refreshlog.Source]refreshlog.PhaseLogRow, len(refreshlog.Sources()))
	for path, row := range paths {
		for _, source := range refreshlog.SourcesOnPath(path) {
			out[source] = refreshlog.PhaseLogRow{
				Source:     source,
				OccurredAt: row.OccurredAt,
				Path:       path,
				DurationMS: row.DurationMS,
			}
		}
	}
	return out
}
