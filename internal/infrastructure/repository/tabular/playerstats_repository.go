package tabular

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fpl-companion/internal/domain/player"
	"github.com/riskibarqy/fpl-companion/internal/domain/playerstats"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

const (
	joinPlayer  = "player"
	joinFixture = "fixture"
)

type PlayerStatsRepository struct {
	store store.Selector
}

func NewPlayerStatsRepository(s store.Selector) *PlayerStatsRepository {
	return &PlayerStatsRepository{store: s}
}

// List reads stat rows with the player's team and position and the fixture's
// finished flag and score attached in the same select.
func (r *PlayerStatsRepository) List(ctx context.Context, q playerstats.Query) ([]playerstats.GameweekStat, error) {
	where := make([]store.Filter, 0, 4)
	if q.FromGameweek > 0 {
		where = append(where, store.Gte("gameweek", q.FromGameweek))
	}
	if q.ToGameweek > 0 {
		where = append(where, store.Lte("gameweek", q.ToGameweek))
	}
	if len(q.PlayerIDs) > 0 {
		where = append(where, store.In("player_id", intsToAny(q.PlayerIDs)))
	}

	rows, err := r.store.Select(ctx, store.Query{
		Table:   tablePlayerStats,
		Columns: statColumns,
		Where:   where,
		Order:   []store.Order{{Column: "gameweek"}, {Column: "player_id"}, {Column: "fixture_id"}},
		Joins: []store.Join{
			{Alias: joinPlayer, Table: tablePlayers, LocalKey: "player_id", ForeignKey: "player_id", Columns: []string{"team_id", "position"}},
			{Alias: joinFixture, Table: tableFixtures, LocalKey: "fixture_id", ForeignKey: "fixture_id", Columns: []string{"finished", "home_score", "away_score"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("select player gameweek stats: %w", err)
	}

	// Team is a joined attribute, so it is filtered after the read.
	var teams map[int]struct{}
	if len(q.TeamIDs) > 0 {
		teams = make(map[int]struct{}, len(q.TeamIDs))
		for _, id := range q.TeamIDs {
			teams[id] = struct{}{}
		}
	}

	out := make([]playerstats.GameweekStat, 0, len(rows))
	for _, row := range rows {
		stat := statFromRow(row)
		if teams != nil {
			if _, ok := teams[stat.TeamID]; !ok {
				continue
			}
		}
		out = append(out, stat)
	}
	return out, nil
}

func statFromRow(row store.Row) playerstats.GameweekStat {
	stat := playerstats.GameweekStat{
		PlayerID:                 getInt(row, "player_id"),
		Gameweek:                 getInt(row, "gameweek"),
		FixtureID:                getInt(row, "fixture_id"),
		WasHome:                  getBool(row, "was_home"),
		Minutes:                  getInt(row, "minutes"),
		TotalPoints:              getInt(row, "total_points"),
		BonusStatus:              playerstats.BonusStatus(getString(row, "bonus_status")),
		ProvisionalBonus:         getInt(row, "provisional_bonus"),
		Bonus:                    getInt(row, "bonus"),
		GoalsScored:              getInt(row, "goals_scored"),
		Assists:                  getInt(row, "assists"),
		CleanSheets:              getInt(row, "clean_sheets"),
		Saves:                    getInt(row, "saves"),
		BPS:                      getInt(row, "bps"),
		DefensiveContribution:    getInt(row, "defensive_contribution"),
		YellowCards:              getInt(row, "yellow_cards"),
		RedCards:                 getInt(row, "red_cards"),
		ExpectedGoals:            getFloat(row, "expected_goals"),
		ExpectedAssists:          getFloat(row, "expected_assists"),
		ExpectedGoalInvolvements: getFloat(row, "expected_goal_involvements"),
		ExpectedGoalsConceded:    getFloat(row, "expected_goals_conceded"),
		GoalsConceded:            getInt(row, "goals_conceded"),
		KickoffTime:              getTimePtr(row, "kickoff_time"),
	}

	if p := getRow(row, joinPlayer); p != nil {
		stat.TeamID = getInt(p, "team_id")
		stat.Position = player.Position(getInt(p, "position"))
	}
	if f := getRow(row, joinFixture); f != nil {
		stat.FixtureFinished = getBool(f, "finished")
		if stat.WasHome {
			stat.TeamGoalsConceded = getIntPtr(f, "away_score")
		} else {
			stat.TeamGoalsConceded = getIntPtr(f, "home_score")
		}
	}
	return stat
}

func intsToAny(values []int) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
