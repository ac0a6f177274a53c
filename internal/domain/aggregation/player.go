package aggregation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/fpl-companion/internal/domain/player"
	"github.com/riskibarqy/fpl-companion/internal/domain/playerstats"
)

// PlayerGameweek is the sum of a player's fixture rows, one gameweek (double
// gameweeks included) or a gameweek range.
type PlayerGameweek struct {
	PlayerID     int
	TeamID       int
	Position     player.Position
	FromGameweek int
	ToGameweek   int
	FixtureIDs   []int

	Minutes                  int
	TotalPoints              int
	EffectiveTotalPoints     int
	Bonus                    int
	ProvisionalBonus         int
	EffectiveBonus           int
	BPS                      int
	GoalsScored              int
	Assists                  int
	CleanSheets              int
	Saves                    int
	DefensiveContribution    int
	YellowCards              int
	RedCards                 int
	GoalsConceded            int
	ExpectedGoals            float64
	ExpectedAssists          float64
	ExpectedGoalInvolvements float64
	ExpectedGoalsConceded    float64

	// Provisional is set when any contributing row still carries provisional bonus.
	Provisional bool

	WebName           string
	CostTenths        *int
	SelectedByPercent *decimal.Decimal
}

// AggregatePlayer folds rows into one aggregate. Rows are expected to belong to
// one player; identity fields come from the first row.
func AggregatePlayer(rows []playerstats.GameweekStat) PlayerGameweek {
	var out PlayerGameweek
	for i, r := range rows {
		if i == 0 {
			out.PlayerID = r.PlayerID
			out.TeamID = r.TeamID
			out.Position = r.Position
			out.FromGameweek = r.Gameweek
			out.ToGameweek = r.Gameweek
		}
		out.add(r)
	}
	return out
}

func (p *PlayerGameweek) add(r playerstats.GameweekStat) {
	if p.FromGameweek == 0 || r.Gameweek < p.FromGameweek {
		p.FromGameweek = r.Gameweek
	}
	if r.Gameweek > p.ToGameweek {
		p.ToGameweek = r.Gameweek
	}
	p.FixtureIDs = append(p.FixtureIDs, r.FixtureID)

	p.Minutes += r.Minutes
	p.TotalPoints += r.TotalPoints
	p.EffectiveTotalPoints += EffectiveTotal(r)
	p.Bonus += r.Bonus
	p.ProvisionalBonus += r.ProvisionalBonus
	p.EffectiveBonus += EffectiveBonus(r)
	p.BPS += r.BPS
	p.GoalsScored += r.GoalsScored
	p.Assists += r.Assists
	p.CleanSheets += r.CleanSheets
	p.Saves += r.Saves
	p.DefensiveContribution += r.DefensiveContribution
	p.YellowCards += r.YellowCards
	p.RedCards += r.RedCards
	p.GoalsConceded += r.GoalsConceded
	p.ExpectedGoals += r.ExpectedGoals
	p.ExpectedAssists += r.ExpectedAssists
	p.ExpectedGoalInvolvements += r.ExpectedGoalInvolvements
	p.ExpectedGoalsConceded += r.ExpectedGoalsConceded

	if r.BonusStatus == playerstats.BonusProvisional {
		p.Provisional = true
	}
}

// Grouping selects the aggregation key.
type Grouping int

const (
	// ByPlayer sums every row of a player, used for range views.
	ByPlayer Grouping = iota
	// ByPlayerGameweek sums per player and gameweek, folding double gameweeks.
	ByPlayerGameweek
)

type groupKey struct {
	playerID int
	gameweek int
}

// AggregatePlayers groups rows and folds each group. Output is ordered by
// player id, then gameweek.
func AggregatePlayers(rows []playerstats.GameweekStat, grouping Grouping) []PlayerGameweek {
	groups := make(map[groupKey][]playerstats.GameweekStat)
	order := make([]groupKey, 0)
	for _, r := range rows {
		key := groupKey{playerID: r.PlayerID}
		if grouping == ByPlayerGameweek {
			key.gameweek = r.Gameweek
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].playerID != order[j].playerID {
			return order[i].playerID < order[j].playerID
		}
		return order[i].gameweek < order[j].gameweek
	})

	out := make([]PlayerGameweek, 0, len(order))
	for _, key := range order {
		out = append(out, AggregatePlayer(groups[key]))
	}
	return out
}

// WithPlayer attaches static player fields used by value stats and display.
func (p PlayerGameweek) WithPlayer(pl player.Player) PlayerGameweek {
	p.WebName = pl.WebName
	p.CostTenths = pl.CostTenths
	p.SelectedByPercent = pl.SelectedByPercent
	if p.TeamID == 0 {
		p.TeamID = pl.TeamID
	}
	if !p.Position.Valid() {
		p.Position = pl.Position
	}
	return p
}

// RowID identifies the aggregate within a ranked set.
func (p PlayerGameweek) RowID() int {
	return p.PlayerID
}

// Stat returns the value of key. Points and bonus report their effective
// values, which is what leaderboards display.
func (p PlayerGameweek) Stat(key playerstats.StatKey) (float64, bool) {
	switch key {
	case playerstats.StatMinutes:
		return float64(p.Minutes), true
	case playerstats.StatTotalPoints:
		return float64(p.EffectiveTotalPoints), true
	case playerstats.StatBonus:
		return float64(p.EffectiveBonus), true
	case playerstats.StatBPS:
		return float64(p.BPS), true
	case playerstats.StatGoalsScored:
		return float64(p.GoalsScored), true
	case playerstats.StatAssists:
		return float64(p.Assists), true
	case playerstats.StatCleanSheets:
		return float64(p.CleanSheets), true
	case playerstats.StatSaves:
		return float64(p.Saves), true
	case playerstats.StatDefensiveContribution:
		return float64(p.DefensiveContribution), true
	case playerstats.StatYellowCards:
		return float64(p.YellowCards), true
	case playerstats.StatRedCards:
		return float64(p.RedCards), true
	case playerstats.StatGoalsConceded:
		return float64(p.GoalsConceded), true
	case playerstats.StatExpectedGoals:
		return p.ExpectedGoals, true
	case playerstats.StatExpectedAssists:
		return p.ExpectedAssists, true
	case playerstats.StatExpectedGoalInvolvements:
		return p.ExpectedGoalInvolvements, true
	case playerstats.StatExpectedGoalsConceded:
		return p.ExpectedGoalsConceded, true
	case playerstats.StatSelectedByPercent:
		if p.SelectedByPercent == nil {
			return 0, false
		}
		return p.SelectedByPercent.InexactFloat64(), true
	default:
		return 0, false
	}
}
