package leaguestanding

import "time"

// Standing is one manager's live row in a classic league.
type Standing struct {
	LeagueID        int
	ManagerID       int
	EntryName       string
	PlayerName      string
	Rank            int
	LastRank        int
	GameweekPoints  int
	TotalPoints     int
	SourceUpdatedAt *time.Time
}

// Movement is positive when the manager climbed.
func (s Standing) Movement() int {
	if s.LastRank == 0 {
		return 0
	}
	return s.LastRank - s.Rank
}
