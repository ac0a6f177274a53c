package manager

import "context"

type Repository interface {
	ListPicks(ctx context.Context, managerID, gameweek int) ([]Pick, error)
}
