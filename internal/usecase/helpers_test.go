package usecase

import (
	"testing"
	"time"

	"github.com/riskibarqy/fpl-companion/internal/infrastructure/repository/tabular"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
	"github.com/riskibarqy/fpl-companion/internal/platform/cache"
	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
)

var testNow = time.Date(2025, 9, 13, 15, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// seedStore holds gameweek 4 as current with one fixture in play and one
// finished awaiting bonus.
func seedStore() *store.Memory {
	m := store.NewMemory()
	m.Seed("gameweeks", []store.Row{
		{"id": 3, "name": "Gameweek 3", "deadline_time": testNow.Add(-7 * 24 * time.Hour), "is_previous": true, "finished": true},
		{"id": 4, "name": "Gameweek 4", "deadline_time": testNow.Add(-3 * time.Hour), "is_current": true},
		{"id": 5, "name": "Gameweek 5", "deadline_time": testNow.Add(7 * 24 * time.Hour), "is_next": true},
	})
	m.Seed("fixtures", []store.Row{
		{"fixture_id": 30, "gameweek": 3, "home_team_id": 1, "away_team_id": 3, "home_score": 1, "away_score": 0, "started": true, "finished": true, "finished_provisional": true, "kickoff_time": testNow.Add(-7 * 24 * time.Hour)},
		{"fixture_id": 40, "gameweek": 4, "home_team_id": 1, "away_team_id": 2, "home_score": 2, "away_score": 1, "started": true, "minutes": 70, "kickoff_time": testNow.Add(-70 * time.Minute)},
		{"fixture_id": 41, "gameweek": 4, "home_team_id": 3, "away_team_id": 4, "home_score": 3, "away_score": 0, "started": true, "finished": true, "finished_provisional": true, "minutes": 90, "kickoff_time": testNow.Add(-3 * time.Hour)},
	})
	m.Seed("teams", []store.Row{
		{"team_id": 1, "short_name": "ARS", "team_name": "Arsenal"},
		{"team_id": 2, "short_name": "LIV", "team_name": "Liverpool"},
		{"team_id": 3, "short_name": "MCI", "team_name": "Man City"},
		{"team_id": 4, "short_name": "BOU", "team_name": "Bournemouth"},
	})
	m.Seed("players", []store.Row{
		{"player_id": 10, "web_name": "Saka", "team_id": 1, "position": 3, "cost_tenths": 100, "selected_by_percent": "31.4"},
		{"player_id": 11, "web_name": "Alisson", "team_id": 2, "position": 1, "cost_tenths": 55},
		{"player_id": 12, "web_name": "Haaland", "team_id": 3, "position": 4, "cost_tenths": 145},
		{"player_id": 13, "web_name": "Salah", "team_id": 2, "position": 3, "cost_tenths": 130},
	})
	m.Seed("player_gameweek_stats", []store.Row{
		{"player_id": 10, "gameweek": 3, "fixture_id": 30, "was_home": true, "minutes": 70, "total_points": 2, "bonus_status": "confirmed"},
		{"player_id": 10, "gameweek": 4, "fixture_id": 40, "was_home": true, "minutes": 90, "total_points": 8, "bonus_status": "provisional", "provisional_bonus": 3, "goals_scored": 1},
		{"player_id": 11, "gameweek": 4, "fixture_id": 40, "was_home": false, "minutes": 90, "total_points": 2, "bonus_status": "confirmed", "saves": 4},
		{"player_id": 13, "gameweek": 4, "fixture_id": 40, "was_home": false, "minutes": 90, "total_points": 6, "bonus_status": "confirmed", "bonus": 1, "goals_scored": 1},
		{"player_id": 12, "gameweek": 4, "fixture_id": 41, "was_home": true, "minutes": 90, "total_points": 13, "bonus_status": "confirmed", "bonus": 3, "goals_scored": 2},
	})
	m.Seed("refresh_phase_log", []store.Row{
		{"source": "fixtures", "occurred_at": testNow.Add(-time.Minute), "path": "fast", "duration_ms": 750},
		{"source": "mvs", "occurred_at": testNow.Add(-20 * time.Minute), "path": "slow", "duration_ms": 12000},
	})
	m.Seed("refresh_path_log", []store.Row{
		{"path": "fast", "occurred_at": testNow.Add(-2 * time.Minute), "duration_ms": 2400},
	})
	m.Seed("deadline_batch_runs", []store.Row{
		{"id": 7, "gameweek": 4, "started_at": testNow.Add(-2 * time.Hour), "success": true},
	})
	m.Seed("manager_picks", []store.Row{
		{"manager_id": 99, "gameweek": 4, "player_id": 10, "position": 1, "multiplier": 2, "is_captain": true},
	})
	m.Seed("league_live_standings", []store.Row{
		{"league_id": 5, "manager_id": 99, "entry_name": "Gunners", "player_name": "Sam", "rank": 1, "last_rank": 2, "event_total": 60, "total": 300},
	})
	return m
}

func newTestCache(t *testing.T) *cache.Client {
	t.Helper()
	c, err := cache.New(cache.Config{
		IsPermanent: store.IsPermanent,
		Logger:      logging.NewNop(),
		Now:         testClock,
	})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func newTestQueryService(t *testing.T, mem *store.Memory, edit ...func(*QueryServiceConfig)) *QueryService {
	t.Helper()
	cfg := QueryServiceConfig{
		Cache:       newTestCache(t),
		Gameweeks:   tabular.NewGameweekRepository(mem),
		Fixtures:    tabular.NewFixtureRepository(mem),
		Teams:       tabular.NewTeamRepository(mem),
		Players:     tabular.NewPlayerRepository(mem),
		Stats:       tabular.NewPlayerStatsRepository(mem),
		RefreshLogs: tabular.NewRefreshLogRepository(mem),
		Managers:    tabular.NewManagerRepository(mem),
		Standings:   tabular.NewStandingRepository(mem),
		IsPermanent: store.IsPermanent,
		LeaseTTL:    -1,
		Logger:      logging.NewNop(),
	}
	for _, fn := range edit {
		fn(&cfg)
	}
	svc := NewQueryService(cfg)
	t.Cleanup(svc.Stop)
	return svc
}
