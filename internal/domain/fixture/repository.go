package fixture

import "context"

// Repository exposes fixture read operations.
type Repository interface {
	ListByGameweek(ctx context.Context, gameweek int) ([]Fixture, error)
	ListByGameweekRange(ctx context.Context, from, to int) ([]Fixture, error)
}
