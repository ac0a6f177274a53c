package aggregation

import (
	"sort"

	"github.com/riskibarqy/fpl-companion/internal/domain/playerstats"
)

// TeamGameweek sums player rows per team. Clean sheets, xGC and ownership are
// shared by every teammate and therefore not summed at all; goals conceded is
// taken from the team-level source.
type TeamGameweek struct {
	TeamID     int
	Players    int
	FixtureIDs []int

	// Minutes is kept as a per-90 denominator and is not a display column.
	Minutes                  int
	TotalPoints              int
	EffectiveTotalPoints     int
	Bonus                    int
	EffectiveBonus           int
	BPS                      int
	GoalsScored              int
	Assists                  int
	Saves                    int
	DefensiveContribution    int
	YellowCards              int
	RedCards                 int
	ExpectedGoals            float64
	ExpectedAssists          float64
	ExpectedGoalInvolvements float64

	// GoalsConceded is nil when no team-level figure is available.
	GoalsConceded *int

	Provisional bool
}

type teamFixture struct {
	teamID    int
	fixtureID int
}

// TeamGoalsConceded deduplicates the team-level goals conceded attached to
// player rows: one value per (team, fixture), summed over fixtures.
func TeamGoalsConceded(rows []playerstats.GameweekStat) map[int]int {
	seen := make(map[teamFixture]struct{})
	out := make(map[int]int)
	for _, r := range rows {
		if r.TeamGoalsConceded == nil {
			continue
		}
		key := teamFixture{teamID: r.TeamID, fixtureID: r.FixtureID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out[r.TeamID] += *r.TeamGoalsConceded
	}
	return out
}

// AggregateTeams folds rows by team. goalsConceded, when non-nil, overrides the
// figures derived from the rows (the REST stats source supplies its own map).
func AggregateTeams(rows []playerstats.GameweekStat, goalsConceded map[int]int) []TeamGameweek {
	if goalsConceded == nil {
		goalsConceded = TeamGoalsConceded(rows)
	}

	teams := make(map[int]*TeamGameweek)
	players := make(map[int]map[int]struct{})
	fixtures := make(map[teamFixture]struct{})
	for _, r := range rows {
		t, ok := teams[r.TeamID]
		if !ok {
			t = &TeamGameweek{TeamID: r.TeamID}
			teams[r.TeamID] = t
			players[r.TeamID] = make(map[int]struct{})
		}
		players[r.TeamID][r.PlayerID] = struct{}{}

		fx := teamFixture{teamID: r.TeamID, fixtureID: r.FixtureID}
		if _, ok := fixtures[fx]; !ok {
			fixtures[fx] = struct{}{}
			t.FixtureIDs = append(t.FixtureIDs, r.FixtureID)
		}

		t.Minutes += r.Minutes
		t.TotalPoints += r.TotalPoints
		t.EffectiveTotalPoints += EffectiveTotal(r)
		t.Bonus += r.Bonus
		t.EffectiveBonus += EffectiveBonus(r)
		t.BPS += r.BPS
		t.GoalsScored += r.GoalsScored
		t.Assists += r.Assists
		t.Saves += r.Saves
		t.DefensiveContribution += r.DefensiveContribution
		t.YellowCards += r.YellowCards
		t.RedCards += r.RedCards
		t.ExpectedGoals += r.ExpectedGoals
		t.ExpectedAssists += r.ExpectedAssists
		t.ExpectedGoalInvolvements += r.ExpectedGoalInvolvements
		if r.BonusStatus == playerstats.BonusProvisional {
			t.Provisional = true
		}
	}

	out := make([]TeamGameweek, 0, len(teams))
	for id, t := range teams {
		t.Players = len(players[id])
		if gc, ok := goalsConceded[id]; ok {
			gc := gc
			t.GoalsConceded = &gc
		}
		sort.Ints(t.FixtureIDs)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out
}

func (t TeamGameweek) RowID() int {
	return t.TeamID
}

// Stat returns the team value of key. Excluded stats report ok=false.
func (t TeamGameweek) Stat(key playerstats.StatKey) (float64, bool) {
	switch key {
	case playerstats.StatTotalPoints:
		return float64(t.EffectiveTotalPoints), true
	case playerstats.StatBonus:
		return float64(t.EffectiveBonus), true
	case playerstats.StatBPS:
		return float64(t.BPS), true
	case playerstats.StatGoalsScored:
		return float64(t.GoalsScored), true
	case playerstats.StatAssists:
		return float64(t.Assists), true
	case playerstats.StatSaves:
		return float64(t.Saves), true
	case playerstats.StatDefensiveContribution:
		return float64(t.DefensiveContribution), true
	case playerstats.StatYellowCards:
		return float64(t.YellowCards), true
	case playerstats.StatRedCards:
		return float64(t.RedCards), true
	case playerstats.StatExpectedGoals:
		return t.ExpectedGoals, true
	case playerstats.StatExpectedAssists:
		return t.ExpectedAssists, true
	case playerstats.StatExpectedGoalInvolvements:
		return t.ExpectedGoalInvolvements, true
	case playerstats.StatGoalsConceded:
		if t.GoalsConceded == nil {
			return 0, false
		}
		return float64(*t.GoalsConceded), true
	default:
		return 0, false
	}
}
