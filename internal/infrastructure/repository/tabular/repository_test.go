package tabular

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fpl-companion/internal/domain/player"
	"github.com/riskibarqy/fpl-companion/internal/domain/playerstats"
	"github.com/riskibarqy/fpl-companion/internal/domain/refreshlog"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

var baseTime = time.Date(2025, 9, 13, 14, 0, 0, 0, time.UTC)

func seededStore() *store.Memory {
	m := store.NewMemory()
	m.Seed(tableGameweeks, []store.Row{
		{"id": 3, "name": "Gameweek 3", "deadline_time": baseTime.Add(-72 * time.Hour), "is_current": false, "is_previous": true, "finished": true},
		{"id": 4, "name": "Gameweek 4", "deadline_time": baseTime.Add(-2 * time.Hour).Format(time.RFC3339), "is_current": true, "is_next": false},
		{"id": 5, "name": "Gameweek 5", "deadline_time": baseTime.Add(7 * 24 * time.Hour), "is_next": true},
	})
	m.Seed(tableFixtures, []store.Row{
		{"fixture_id": 40, "gameweek": 4, "home_team_id": 1, "away_team_id": 2, "home_score": 2, "away_score": 1, "started": true, "finished": true, "finished_provisional": true, "kickoff_time": baseTime},
		{"fixture_id": 41, "gameweek": 4, "home_team_id": 3, "away_team_id": 1, "home_score": nil, "away_score": nil, "kickoff_time": baseTime.Add(3 * time.Hour)},
		{"fixture_id": 30, "gameweek": 3, "home_team_id": 2, "away_team_id": 3, "home_score": 0, "away_score": 0, "started": true, "finished": true, "finished_provisional": true, "kickoff_time": baseTime.Add(-72 * time.Hour)},
	})
	m.Seed(tablePlayers, []store.Row{
		{"player_id": 10, "web_name": "Saka", "team_id": 1, "position": 3, "cost_tenths": 100, "selected_by_percent": "31.4"},
		{"player_id": 11, "web_name": "Raya", "team_id": 2, "position": 1, "cost_tenths": nil, "selected_by_percent": nil},
	})
	m.Seed(tablePlayerStats, []store.Row{
		{"player_id": 10, "gameweek": 4, "fixture_id": 40, "was_home": true, "minutes": 90, "total_points": 8, "bonus_status": "provisional", "provisional_bonus": 3, "bonus": 0, "expected_goals": 0.42},
		{"player_id": 11, "gameweek": 4, "fixture_id": 40, "was_home": false, "minutes": 90, "total_points": 2, "bonus_status": "confirmed", "bonus": 0, "saves": 4},
		{"player_id": 10, "gameweek": 3, "fixture_id": 30, "was_home": true, "minutes": 70, "total_points": 2, "bonus_status": "confirmed"},
	})
	m.Seed(tablePhaseLog, []store.Row{
		{"source": "fixtures", "occurred_at": baseTime.Add(-5 * time.Minute), "path": "fast", "duration_ms": 800},
		{"source": "fixtures", "occurred_at": baseTime.Add(-1 * time.Minute), "path": "fast", "duration_ms": 750},
		{"source": "mvs", "occurred_at": baseTime.Add(-20 * time.Minute), "path": "slow", "duration_ms": 12000},
	})
	m.Seed(tablePathLog, []store.Row{
		{"path": "fast", "occurred_at": baseTime.Add(-2 * time.Minute), "duration_ms": 2400},
	})
	m.Seed(tableDeadlineBatchRuns, []store.Row{
		{"id": 1, "gameweek": 3, "started_at": baseTime.Add(-80 * time.Hour), "success": true},
		{"id": 2, "gameweek": 4, "started_at": baseTime.Add(-1 * time.Hour), "manager_count": 120, "duration_seconds": 61.5, "phase_breakdown": `{"picks":40.5}`},
	})
	return m
}

func TestGameweekRepository_CurrentAndNext(t *testing.T) {
	t.Parallel()

	repo := NewGameweekRepository(seededStore())

	current, ok, err := repo.Current(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, current.ID)
	assert.True(t, current.DeadlineTime.Equal(baseTime.Add(-2*time.Hour)))

	next, ok, err := repo.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, next.ID)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[0].ID)
}

func TestGameweekRepository_MissingRowIsNotAnError(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	m.Seed(tableGameweeks, nil)

	_, ok, err := NewGameweekRepository(m).Current(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFixtureRepository_ListByGameweek(t *testing.T) {
	t.Parallel()

	fixtures, err := NewFixtureRepository(seededStore()).ListByGameweek(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, fixtures, 2)

	assert.Equal(t, 40, fixtures[0].ID)
	require.NotNil(t, fixtures[0].HomeScore)
	assert.Equal(t, 2, *fixtures[0].HomeScore)
	assert.Nil(t, fixtures[1].HomeScore)
	assert.False(t, fixtures[1].Started)
}

func TestPlayerRepository_DecodesOptionalFields(t *testing.T) {
	t.Parallel()

	repo := NewPlayerRepository(seededStore())

	saka, ok, err := repo.GetByID(context.Background(), 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, player.PositionMID, saka.Position)
	require.NotNil(t, saka.SelectedByPercent)
	assert.Equal(t, "31.4", saka.SelectedByPercent.String())

	raya, ok, err := repo.GetByID(context.Background(), 11)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, raya.CostTenths)
	assert.Nil(t, raya.SelectedByPercent)

	_, ok, err = repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlayerStatsRepository_AttachesJoins(t *testing.T) {
	t.Parallel()

	stats, err := NewPlayerStatsRepository(seededStore()).List(context.Background(), playerstats.Query{FromGameweek: 4, ToGameweek: 4})
	require.NoError(t, err)
	require.Len(t, stats, 2)

	saka := stats[0]
	assert.Equal(t, 10, saka.PlayerID)
	assert.Equal(t, 1, saka.TeamID)
	assert.Equal(t, player.PositionMID, saka.Position)
	assert.True(t, saka.FixtureFinished)
	require.NotNil(t, saka.TeamGoalsConceded)
	assert.Equal(t, 1, *saka.TeamGoalsConceded)
	assert.Equal(t, playerstats.BonusProvisional, saka.BonusStatus)
	assert.InDelta(t, 0.42, saka.ExpectedGoals, 1e-9)

	raya := stats[1]
	require.NotNil(t, raya.TeamGoalsConceded)
	assert.Equal(t, 2, *raya.TeamGoalsConceded)
}

func TestPlayerStatsRepository_FiltersByPlayerAndTeam(t *testing.T) {
	t.Parallel()

	repo := NewPlayerStatsRepository(seededStore())

	byPlayer, err := repo.List(context.Background(), playerstats.Query{PlayerIDs: []int{10}})
	require.NoError(t, err)
	require.Len(t, byPlayer, 2)
	assert.Equal(t, 3, byPlayer[0].Gameweek)

	byTeam, err := repo.List(context.Background(), playerstats.Query{TeamIDs: []int{2}})
	require.NoError(t, err)
	require.Len(t, byTeam, 1)
	assert.Equal(t, 11, byTeam[0].PlayerID)
}

func TestRefreshLogRepository_LatestPhases(t *testing.T) {
	t.Parallel()

	phases, err := NewRefreshLogRepository(seededStore()).LatestPhases(context.Background())
	require.NoError(t, err)
	require.Len(t, phases, 2)

	fixtures := phases[refreshlog.SourceFixtures]
	assert.True(t, fixtures.OccurredAt.Equal(baseTime.Add(-1*time.Minute)))
	assert.Equal(t, 750, fixtures.DurationMS)
	assert.Equal(t, refreshlog.PathSlow, phases[refreshlog.SourceMVs].Path)

	_, ok := phases[refreshlog.SourceGameweeks]
	assert.False(t, ok)
}

func TestRefreshLogRepository_LatestPhasesPropagatesError(t *testing.T) {
	t.Parallel()

	m := seededStore()
	m.SetError(tablePhaseLog, store.Permanent(errors.New(`relation "refresh_phase_log" does not exist`)))

	_, err := NewRefreshLogRepository(m).LatestPhases(context.Background())
	require.Error(t, err)
	assert.True(t, store.IsPermanent(err))
}

func TestRefreshLogRepository_LatestPathsAndBatch(t *testing.T) {
	t.Parallel()

	repo := NewRefreshLogRepository(seededStore())

	paths, err := repo.LatestPaths(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, 2400, paths[refreshlog.PathFast].DurationMS)

	batch, ok, err := repo.LatestDeadlineBatch(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, batch.ID)
	require.NotNil(t, batch.ManagerCount)
	assert.Equal(t, 120, *batch.ManagerCount)
	assert.Nil(t, batch.Success)
	assert.InDelta(t, 40.5, batch.PhaseBreakdown["picks"], 1e-9)
}
