package tabular

// Table and column names of the remote tabular schema.
const (
	tableGameweeks         = "gameweeks"
	tableFixtures          = "fixtures"
	tableTeams             = "teams"
	tablePlayers           = "players"
	tablePlayerStats       = "player_gameweek_stats"
	tablePhaseLog          = "refresh_phase_log"
	tablePathLog           = "refresh_path_log"
	tableDeadlineBatchRuns = "deadline_batch_runs"
	tableManagerPicks      = "manager_picks"
	tableLiveStandings     = "league_live_standings"
)

var (
	gameweekColumns = []string{
		"id", "name", "deadline_time", "is_current", "is_next", "is_previous",
		"finished", "data_checked", "fpl_ranks_updated", "release_time",
	}
	fixtureColumns = []string{
		"fixture_id", "gameweek", "home_team_id", "away_team_id", "home_score", "away_score",
		"started", "finished", "finished_provisional", "minutes", "kickoff_time",
	}
	teamColumns   = []string{"team_id", "short_name", "team_name"}
	playerColumns = []string{"player_id", "web_name", "team_id", "position", "cost_tenths", "selected_by_percent"}
	statColumns   = []string{
		"player_id", "gameweek", "fixture_id", "was_home", "minutes", "total_points",
		"bonus_status", "provisional_bonus", "bonus", "goals_scored", "assists", "clean_sheets",
		"saves", "bps", "defensive_contribution", "yellow_cards", "red_cards",
		"expected_goals", "expected_assists", "expected_goal_involvements", "expected_goals_conceded",
		"goals_conceded", "kickoff_time",
	}
	phaseLogColumns      = []string{"source", "occurred_at", "path", "duration_ms"}
	pathLogColumns       = []string{"path", "occurred_at", "duration_ms"}
	deadlineBatchColumns = []string{
		"id", "gameweek", "started_at", "finished_at", "duration_seconds",
		"manager_count", "league_count", "success", "phase_breakdown",
	}
	managerPickColumns  = []string{"manager_id", "gameweek", "player_id", "position", "multiplier", "is_captain", "is_vice_captain"}
	liveStandingColumns = []string{"league_id", "manager_id", "entry_name", "player_name", "rank", "last_rank", "event_total", "total", "updated_at"}
)
