package leaguestanding

import "context"

type Repository interface {
	ListLiveByLeague(ctx context.Context, leagueID int) ([]Standing, error)
}
