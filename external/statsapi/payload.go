package statsapi

import (
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/fpl-companion/internal/domain/aggregation"
	"github.com/riskibarqy/fpl-companion/internal/domain/player"
)

// Page is one response of the stats endpoint.
type Page struct {
	Players               []PlayerRow      `json:"players"`
	TeamGoalsConceded     map[int]int      `json:"team_goals_conceded"`
	TotalCount            int              `json:"total_count"`
	Page                  int              `json:"page"`
	PageSize              int              `json:"page_size"`
	Top10PlayerIDsByField map[string][]int `json:"top_10_player_ids_by_field"`
}

// PlayerRow is an aggregated player line as the backend serves it.
type PlayerRow struct {
	PlayerID                 int              `json:"player_id"`
	WebName                  string           `json:"web_name"`
	TeamID                   int              `json:"team_id"`
	Position                 int              `json:"position"`
	CostTenths               *int             `json:"now_cost"`
	SelectedByPercent        *decimal.Decimal `json:"selected_by_percent"`
	Minutes                  int              `json:"minutes"`
	TotalPoints              int              `json:"total_points"`
	EffectiveTotalPoints     *int             `json:"effective_total_points"`
	Bonus                    int              `json:"bonus"`
	ProvisionalBonus         int              `json:"provisional_bonus"`
	EffectiveBonus           *int             `json:"effective_bonus"`
	BPS                      int              `json:"bps"`
	GoalsScored              int              `json:"goals_scored"`
	Assists                  int              `json:"assists"`
	CleanSheets              int              `json:"clean_sheets"`
	Saves                    int              `json:"saves"`
	DefensiveContribution    int              `json:"defensive_contribution"`
	YellowCards              int              `json:"yellow_cards"`
	RedCards                 int              `json:"red_cards"`
	GoalsConceded            int              `json:"goals_conceded"`
	ExpectedGoals            float64          `json:"expected_goals"`
	ExpectedAssists          float64          `json:"expected_assists"`
	ExpectedGoalInvolvements float64          `json:"expected_goal_involvements"`
	ExpectedGoalsConceded    float64          `json:"expected_goals_conceded"`
	Provisional              bool             `json:"provisional"`
}

// Aggregate converts the row into the locally computed aggregate shape. Rows
// without effective fields fall back to the raw totals.
func (r PlayerRow) Aggregate(fromGW, toGW int) aggregation.PlayerGameweek {
	effectiveTotal := r.TotalPoints
	if r.EffectiveTotalPoints != nil {
		effectiveTotal = *r.EffectiveTotalPoints
	}
	effectiveBonus := r.Bonus
	if r.EffectiveBonus != nil {
		effectiveBonus = *r.EffectiveBonus
	}

	return aggregation.PlayerGameweek{
		PlayerID:                 r.PlayerID,
		TeamID:                   r.TeamID,
		Position:                 player.Position(r.Position),
		FromGameweek:             fromGW,
		ToGameweek:               toGW,
		Minutes:                  r.Minutes,
		TotalPoints:              r.TotalPoints,
		EffectiveTotalPoints:     effectiveTotal,
		Bonus:                    r.Bonus,
		ProvisionalBonus:         r.ProvisionalBonus,
		EffectiveBonus:           effectiveBonus,
		BPS:                      r.BPS,
		GoalsScored:              r.GoalsScored,
		Assists:                  r.Assists,
		CleanSheets:              r.CleanSheets,
		Saves:                    r.Saves,
		DefensiveContribution:    r.DefensiveContribution,
		YellowCards:              r.YellowCards,
		RedCards:                 r.RedCards,
		GoalsConceded:            r.GoalsConceded,
		ExpectedGoals:            r.ExpectedGoals,
		ExpectedAssists:          r.ExpectedAssists,
		ExpectedGoalInvolvements: r.ExpectedGoalInvolvements,
		ExpectedGoalsConceded:    r.ExpectedGoalsConceded,
		Provisional:              r.Provisional,
		WebName:                  r.WebName,
		CostTenths:               r.CostTenths,
		SelectedByPercent:        r.SelectedByPercent,
	}
}
