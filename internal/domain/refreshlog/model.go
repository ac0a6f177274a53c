package refreshlog

import "time"

// Source is a backend refresh phase whose freshness is reported.
type Source string

const (
	SourceGameweeks     Source = "gameweeks"
	SourceFixtures      Source = "fixtures"
	SourceGWPlayers     Source = "gw_players"
	SourceLiveStandings Source = "live_standings"
	SourceManagerPoints Source = "manager_points"
	SourceMVs           Source = "mvs"
)

// Path is one of the two backend refresh cadences.
type Path string

const (
	PathFast Path = "fast"
	PathSlow Path = "slow"
)

var sources = []Source{
	SourceGameweeks,
	SourceFixtures,
	SourceGWPlayers,
	SourceLiveStandings,
	SourceManagerPoints,
	SourceMVs,
}

var pathSources = map[Path][]Source{
	PathFast: {SourceGameweeks, SourceFixtures, SourceGWPlayers},
	PathSlow: {SourceLiveStandings, SourceManagerPoints, SourceMVs},
}

// Sources lists every declared phase source in report order.
func Sources() []Source {
	return append([]Source(nil), sources...)
}

// PathOf returns the path a source is refreshed on.
func PathOf(source Source) Path {
	for path, members := range pathSources {
		for _, member := range members {
			if member == source {
				return path
			}
		}
	}
	return PathSlow
}

// SourcesOnPath returns the three source labels attached to a path.
func SourcesOnPath(path Path) []Source {
	return append([]Source(nil), pathSources[path]...)
}

// PhaseLogRow is one completed backend phase.
type PhaseLogRow struct {
	Source     Source
	OccurredAt time.Time
	Path       Path
	DurationMS int
}

// PathLogRow is one completed backend path run, used when the phase log is unavailable.
type PathLogRow struct {
	Path       Path
	OccurredAt time.Time
	DurationMS int
}

// DeadlineBatchRun is one post-deadline backend batch.
type DeadlineBatchRun struct {
	ID              int
	Gameweek        int
	StartedAt       time.Time
	FinishedAt      *time.Time
	DurationSeconds *float64
	ManagerCount    *int
	LeagueCount     *int
	Success         *bool
	PhaseBreakdown  map[string]any
}

// SnapshotRow is appended to refresh_snapshot_log.
type SnapshotRow struct {
	Source           Source
	State            string
	SinceBackendSec  *float64
	SinceFrontendSec *float64
	RecordedAt       time.Time
}

// FrontendDurationRow is appended to refresh_frontend_duration_log.
type FrontendDurationRow struct {
	Source     Source
	State      string
	QueryKey   string
	DurationMS int64
	RecordedAt time.Time
}
