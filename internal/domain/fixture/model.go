package fixture

import (
	"errors"
	"time"
)

var (
	ErrFinishedNotProvisional = errors.New("fixture finished without finished_provisional")
	ErrScoreBeforeStart       = errors.New("fixture has a score before it started")
)

// Fixture represents one scheduled match.
type Fixture struct {
	ID                  int
	Gameweek            int
	HomeTeamID          int
	AwayTeamID          int
	HomeScore           *int
	AwayScore           *int
	Started             bool
	Finished            bool
	FinishedProvisional bool
	Minutes             *int
	KickoffTime         *time.Time
}

// InPlay reports whether the match is running or should be by the clock. The
// started flag can lag kickoff, so an elapsed kickoff counts too.
func (f Fixture) InPlay(now time.Time) bool {
	if f.FinishedProvisional {
		return false
	}
	if f.Started {
		return true
	}
	return f.KickoffTime != nil && !f.KickoffTime.After(now)
}

// AwaitingBonus reports a match that ended but whose bonus is not yet confirmed.
func (f Fixture) AwaitingBonus() bool {
	return f.FinishedProvisional && !f.Finished
}

// GoalsConcededBy returns the opponent's score for teamID.
func (f Fixture) GoalsConcededBy(teamID int) (int, bool) {
	switch teamID {
	case f.HomeTeamID:
		if f.AwayScore == nil {
			return 0, false
		}
		return *f.AwayScore, true
	case f.AwayTeamID:
		if f.HomeScore == nil {
			return 0, false
		}
		return *f.HomeScore, true
	default:
		return 0, false
	}
}

// Validate checks the row-level invariants the store is expected to keep.
func (f Fixture) Validate() error {
	if f.Finished && !f.FinishedProvisional {
		return ErrFinishedNotProvisional
	}
	if !f.Started && (f.HomeScore != nil || f.AwayScore != nil) {
		return ErrScoreBeforeStart
	}
	return nil
}
