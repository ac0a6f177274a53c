package playerstats

import (
	"time"

	"github.com/riskibarqy/fpl-companion/internal/domain/player"
)

type BonusStatus string

const (
	BonusProvisional BonusStatus = "provisional"
	BonusConfirmed   BonusStatus = "confirmed"
)

// GameweekStat is one player's line for one fixture. A player has two rows in
// a double gameweek.
type GameweekStat struct {
	PlayerID                 int
	Gameweek                 int
	FixtureID                int
	WasHome                  bool
	Minutes                  int
	TotalPoints              int
	BonusStatus              BonusStatus
	ProvisionalBonus         int
	Bonus                    int
	GoalsScored              int
	Assists                  int
	CleanSheets              int
	Saves                    int
	BPS                      int
	DefensiveContribution    int
	YellowCards              int
	RedCards                 int
	ExpectedGoals            float64
	ExpectedAssists          float64
	ExpectedGoalInvolvements float64
	ExpectedGoalsConceded    float64
	GoalsConceded            int
	KickoffTime              *time.Time

	// Joined from players and fixtures.
	TeamID            int
	Position          player.Position
	FixtureFinished   bool
	TeamGoalsConceded *int
}

// Query narrows a stat listing. Zero values mean "no constraint".
type Query struct {
	FromGameweek int
	ToGameweek   int
	PlayerIDs    []int
	TeamIDs      []int
}
