package gameweek

import "context"

// Repository exposes gameweek read operations. A missing row is reported with
// ok=false rather than an error.
type Repository interface {
	Current(ctx context.Context) (Gameweek, bool, error)
	Next(ctx context.Context) (Gameweek, bool, error)
	List(ctx context.Context) ([]Gameweek, error)
}
