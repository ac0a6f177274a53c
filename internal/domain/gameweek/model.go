package gameweek

import "time"

// Gameweek is one scheduled round with a transfer deadline.
type Gameweek struct {
	ID              int
	Name            string
	DeadlineTime    time.Time
	IsCurrent       bool
	IsNext          bool
	IsPrevious      bool
	Finished        bool
	DataChecked     bool
	FPLRanksUpdated bool
	ReleaseTime     *time.Time
}

// Current returns the single row flagged is_current. When the source breaks the
// at-most-one invariant the lowest id wins so the choice is deterministic.
func Current(rows []Gameweek) (Gameweek, bool) {
	return first(rows, func(g Gameweek) bool { return g.IsCurrent })
}

func Next(rows []Gameweek) (Gameweek, bool) {
	return first(rows, func(g Gameweek) bool { return g.IsNext })
}

func first(rows []Gameweek, match func(Gameweek) bool) (Gameweek, bool) {
	var (
		out   Gameweek
		found bool
	)
	for _, row := range rows {
		if !match(row) {
			continue
		}
		if !found || row.ID < out.ID {
			out = row
			found = true
		}
	}
	return out, found
}
