package playerstats

// StatKey names a numeric column that can be totalled, ranked and compared.
type StatKey string

const (
	StatMinutes                  StatKey = "minutes"
	StatTotalPoints              StatKey = "total_points"
	StatBonus                    StatKey = "bonus"
	StatBPS                      StatKey = "bps"
	StatGoalsScored              StatKey = "goals_scored"
	StatAssists                  StatKey = "assists"
	StatCleanSheets              StatKey = "clean_sheets"
	StatSaves                    StatKey = "saves"
	StatDefensiveContribution    StatKey = "defensive_contribution"
	StatYellowCards              StatKey = "yellow_cards"
	StatRedCards                 StatKey = "red_cards"
	StatExpectedGoals            StatKey = "expected_goals"
	StatExpectedAssists          StatKey = "expected_assists"
	StatExpectedGoalInvolvements StatKey = "expected_goal_involvements"
	StatExpectedGoalsConceded    StatKey = "expected_goals_conceded"
	StatGoalsConceded            StatKey = "goals_conceded"
	StatSelectedByPercent        StatKey = "selected_by_percent"
)

// Scope controls which comparisons a stat appears in.
type Scope int

const (
	ScopeAll Scope = iota
	// ScopeKeeper stats only make sense when a goalkeeper is compared.
	ScopeKeeper
	// ScopeForwardPair stats are shown only when a forward is in the comparison.
	ScopeForwardPair
	// ScopeExpectedAttack stats are hidden when every compared player is a keeper.
	ScopeExpectedAttack
)

type Definition struct {
	Key          StatKey
	Label        string
	HigherBetter bool
	Scope        Scope
	// TeamExcluded stats are double counted across teammates and never summed per team.
	TeamExcluded bool
	// Fractional stats are reported with decimals.
	Fractional bool
}

var catalog = []Definition{
	{Key: StatTotalPoints, Label: "Points", HigherBetter: true},
	{Key: StatMinutes, Label: "Minutes", HigherBetter: true},
	{Key: StatGoalsScored, Label: "Goals", HigherBetter: true},
	{Key: StatAssists, Label: "Assists", HigherBetter: true},
	{Key: StatExpectedGoals, Label: "xG", HigherBetter: true, Scope: ScopeExpectedAttack, Fractional: true},
	{Key: StatExpectedAssists, Label: "xA", HigherBetter: true, Scope: ScopeExpectedAttack, Fractional: true},
	{Key: StatExpectedGoalInvolvements, Label: "xGI", HigherBetter: true, Scope: ScopeExpectedAttack, Fractional: true},
	{Key: StatBonus, Label: "Bonus", HigherBetter: true},
	{Key: StatBPS, Label: "BPS", HigherBetter: true},
	{Key: StatCleanSheets, Label: "Clean sheets", HigherBetter: true, Scope: ScopeForwardPair, TeamExcluded: true},
	{Key: StatDefensiveContribution, Label: "Defensive contribution", HigherBetter: true, Scope: ScopeForwardPair},
	{Key: StatExpectedGoalsConceded, Label: "xGC", HigherBetter: false, Scope: ScopeForwardPair, TeamExcluded: true, Fractional: true},
	{Key: StatSaves, Label: "Saves", HigherBetter: true, Scope: ScopeKeeper},
	{Key: StatGoalsConceded, Label: "Goals conceded", HigherBetter: false, TeamExcluded: true},
	{Key: StatYellowCards, Label: "Yellow cards", HigherBetter: false},
	{Key: StatRedCards, Label: "Red cards", HigherBetter: false},
	{Key: StatSelectedByPercent, Label: "Selected by %", HigherBetter: true, TeamExcluded: true, Fractional: true},
}

var byKey = func() map[StatKey]Definition {
	out := make(map[StatKey]Definition, len(catalog))
	for _, def := range catalog {
		out[def.Key] = def
	}
	return out
}()

// Catalog returns every stat in display order.
func Catalog() []Definition {
	return append([]Definition(nil), catalog...)
}

func Lookup(key StatKey) (Definition, bool) {
	def, ok := byKey[key]
	return def, ok
}

// Keys returns the keys of defs in order.
func Keys(defs []Definition) []StatKey {
	out := make([]StatKey, 0, len(defs))
	for _, def := range defs {
		out = append(out, def.Key)
	}
	return out
}
