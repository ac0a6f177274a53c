package app

import (
	"time"

	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

const (
	seedTeamArsenal   = 1
	seedTeamLiverpool = 12
	seedTeamChelsea   = 7
	seedTeamSpurs     = 18
	seedLeagueID      = 314
)

// seedDevelopmentStore fills the memory driver with one live gameweek around
// now so the dashboard has something to poll without a database.
func seedDevelopmentStore(now time.Time) *store.Memory {
	now = now.UTC().Truncate(time.Minute)
	m := store.NewMemory()

	m.Seed("gameweeks", []store.Row{
		{"id": 7, "name": "Gameweek 7", "deadline_time": now.Add(-8 * 24 * time.Hour), "is_previous": true, "finished": true, "data_checked": true, "fpl_ranks_updated": true, "release_time": nil},
		{"id": 8, "name": "Gameweek 8", "deadline_time": now.Add(-2 * time.Hour), "is_current": true, "release_time": nil},
		{"id": 9, "name": "Gameweek 9", "deadline_time": now.Add(6 * 24 * time.Hour), "is_next": true, "release_time": nil},
	})
	m.Seed("teams", []store.Row{
		{"team_id": seedTeamArsenal, "short_name": "ARS", "team_name": "Arsenal"},
		{"team_id": seedTeamChelsea, "short_name": "CHE", "team_name": "Chelsea"},
		{"team_id": seedTeamLiverpool, "short_name": "LIV", "team_name": "Liverpool"},
		{"team_id": seedTeamSpurs, "short_name": "TOT", "team_name": "Spurs"},
	})
	m.Seed("fixtures", []store.Row{
		{"fixture_id": 71, "gameweek": 7, "home_team_id": seedTeamLiverpool, "away_team_id": seedTeamArsenal, "home_score": 1, "away_score": 1, "started": true, "finished": true, "finished_provisional": true, "minutes": 90, "kickoff_time": now.Add(-7 * 24 * time.Hour)},
		{"fixture_id": 72, "gameweek": 7, "home_team_id": seedTeamSpurs, "away_team_id": seedTeamChelsea, "home_score": 0, "away_score": 2, "started": true, "finished": true, "finished_provisional": true, "minutes": 90, "kickoff_time": now.Add(-7 * 24 * time.Hour)},
		{"fixture_id": 81, "gameweek": 8, "home_team_id": seedTeamArsenal, "away_team_id": seedTeamChelsea, "home_score": 2, "away_score": 0, "started": true, "minutes": 64, "kickoff_time": now.Add(-64 * time.Minute)},
		{"fixture_id": 82, "gameweek": 8, "home_team_id": seedTeamLiverpool, "away_team_id": seedTeamSpurs, "home_score": nil, "away_score": nil, "minutes": 0, "kickoff_time": now.Add(3 * time.Hour)},
	})
	m.Seed("players", []store.Row{
		{"player_id": 1, "web_name": "Raya", "team_id": seedTeamArsenal, "position": 1, "cost_tenths": 55, "selected_by_percent": 21.4},
		{"player_id": 2, "web_name": "Saliba", "team_id": seedTeamArsenal, "position": 2, "cost_tenths": 60, "selected_by_percent": 33.1},
		{"player_id": 3, "web_name": "Saka", "team_id": seedTeamArsenal, "position": 3, "cost_tenths": 100, "selected_by_percent": 41.7},
		{"player_id": 4, "web_name": "Palmer", "team_id": seedTeamChelsea, "position": 3, "cost_tenths": 105, "selected_by_percent": 38.9},
		{"player_id": 5, "web_name": "Salah", "team_id": seedTeamLiverpool, "position": 3, "cost_tenths": 130, "selected_by_percent": 62.3},
		{"player_id": 6, "web_name": "Son", "team_id": seedTeamSpurs, "position": 3, "cost_tenths": 95, "selected_by_percent": 9.8},
		{"player_id": 7, "web_name": "Jackson", "team_id": seedTeamChelsea, "position": 4, "cost_tenths": 75, "selected_by_percent": 12.0},
		{"player_id": 8, "web_name": "Havertz", "team_id": seedTeamArsenal, "position": 4, "cost_tenths": 80, "selected_by_percent": 7.5},
	})
	m.Seed("player_gameweek_stats", []store.Row{
		{"player_id": 3, "gameweek": 7, "fixture_id": 71, "was_home": false, "minutes": 90, "total_points": 8, "bonus_status": "confirmed", "bonus": 2, "goals_scored": 1, "bps": 31, "expected_goals": 0.62, "expected_assists": 0.11, "expected_goal_involvements": 0.73, "kickoff_time": now.Add(-7 * 24 * time.Hour)},
		{"player_id": 5, "gameweek": 7, "fixture_id": 71, "was_home": true, "minutes": 90, "total_points": 9, "bonus_status": "confirmed", "bonus": 3, "goals_scored": 1, "bps": 34, "expected_goals": 0.81, "expected_assists": 0.2, "expected_goal_involvements": 1.01, "kickoff_time": now.Add(-7 * 24 * time.Hour)},
		{"player_id": 4, "gameweek": 7, "fixture_id": 72, "was_home": false, "minutes": 90, "total_points": 12, "bonus_status": "confirmed", "bonus": 3, "goals_scored": 1, "assists": 1, "bps": 40, "expected_goals": 0.55, "expected_assists": 0.48, "expected_goal_involvements": 1.03, "kickoff_time": now.Add(-7 * 24 * time.Hour)},
		{"player_id": 6, "gameweek": 7, "fixture_id": 72, "was_home": true, "minutes": 78, "total_points": 2, "bonus_status": "confirmed", "bps": 9, "goals_conceded": 2, "kickoff_time": now.Add(-7 * 24 * time.Hour)},
		{"player_id": 1, "gameweek": 8, "fixture_id": 81, "was_home": true, "minutes": 64, "total_points": 6, "bonus_status": "provisional", "provisional_bonus": 1, "clean_sheets": 1, "saves": 3, "bps": 24, "kickoff_time": now.Add(-64 * time.Minute)},
		{"player_id": 2, "gameweek": 8, "fixture_id": 81, "was_home": true, "minutes": 64, "total_points": 6, "bonus_status": "provisional", "provisional_bonus": 2, "clean_sheets": 1, "defensive_contribution": 11, "bps": 27, "kickoff_time": now.Add(-64 * time.Minute)},
		{"player_id": 3, "gameweek": 8, "fixture_id": 81, "was_home": true, "minutes": 64, "total_points": 9, "bonus_status": "provisional", "provisional_bonus": 3, "goals_scored": 1, "assists": 1, "bps": 35, "expected_goals": 0.44, "expected_assists": 0.37, "expected_goal_involvements": 0.81, "kickoff_time": now.Add(-64 * time.Minute)},
		{"player_id": 4, "gameweek": 8, "fixture_id": 81, "was_home": false, "minutes": 64, "total_points": 2, "bonus_status": "provisional", "bps": 12, "yellow_cards": 1, "goals_conceded": 2, "expected_goals": 0.12, "kickoff_time": now.Add(-64 * time.Minute)},
		{"player_id": 7, "gameweek": 8, "fixture_id": 81, "was_home": false, "minutes": 58, "total_points": 1, "bonus_status": "provisional", "bps": 4, "goals_conceded": 2, "expected_goals": 0.3, "kickoff_time": now.Add(-64 * time.Minute)},
	})
	m.Seed("refresh_phase_log", []store.Row{
		{"source": "gameweeks", "occurred_at": now.Add(-4 * time.Minute), "path": "slow", "duration_ms": 2100},
		{"source": "fixtures", "occurred_at": now.Add(-30 * time.Second), "path": "fast", "duration_ms": 640},
		{"source": "gw_players", "occurred_at": now.Add(-45 * time.Second), "path": "fast", "duration_ms": 1880},
		{"source": "manager_points", "occurred_at": now.Add(-90 * time.Minute), "path": "slow", "duration_ms": 15400},
		{"source": "mvs", "occurred_at": now.Add(-4 * time.Minute), "path": "slow", "duration_ms": 9100},
		{"source": "live_standings", "occurred_at": now.Add(-2 * time.Minute), "path": "fast", "duration_ms": 3200},
	})
	m.Seed("refresh_path_log", []store.Row{
		{"path": "fast", "occurred_at": now.Add(-30 * time.Second), "duration_ms": 5720},
		{"path": "slow", "occurred_at": now.Add(-4 * time.Minute), "duration_ms": 41200},
	})
	m.Seed("deadline_batch_runs", []store.Row{
		{"id": 8, "gameweek": 8, "started_at": now.Add(-115 * time.Minute), "finished_at": now.Add(-100 * time.Minute), "duration_seconds": 900.0, "manager_count": 1240, "league_count": 3, "success": true, "phase_breakdown": `{"picks":610.5,"standings":289.5}`},
	})
	m.Seed("manager_picks", []store.Row{
		{"manager_id": 1001, "gameweek": 8, "player_id": 1, "position": 1, "multiplier": 1},
		{"manager_id": 1001, "gameweek": 8, "player_id": 2, "position": 2, "multiplier": 1},
		{"manager_id": 1001, "gameweek": 8, "player_id": 3, "position": 3, "multiplier": 2, "is_captain": true},
		{"manager_id": 1001, "gameweek": 8, "player_id": 5, "position": 4, "multiplier": 1, "is_vice_captain": true},
		{"manager_id": 1001, "gameweek": 8, "player_id": 8, "position": 12, "multiplier": 0},
	})
	m.Seed("league_live_standings", []store.Row{
		{"league_id": seedLeagueID, "manager_id": 1001, "entry_name": "Saka Potatoes", "player_name": "Alex", "rank": 1, "last_rank": 3, "event_total": 41, "total": 498, "updated_at": now.Add(-2 * time.Minute)},
		{"league_id": seedLeagueID, "manager_id": 1002, "entry_name": "Cole Palmer Violet", "player_name": "Robin", "rank": 2, "last_rank": 1, "event_total": 22, "total": 490, "updated_at": now.Add(-2 * time.Minute)},
		{"league_id": seedLeagueID, "manager_id": 1003, "entry_name": "Klopp Til You Drop", "player_name": "Jordan", "rank": 3, "last_rank": 2, "event_total": 18, "total": 471, "updated_at": now.Add(-2 * time.Minute)},
	})
	m.Seed("refresh_snapshot_log", nil)
	m.Seed("refresh_frontend_duration_log", nil)

	return m
}
