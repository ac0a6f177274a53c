package playerstats

import "context"

type Repository interface {
	List(ctx context.Context, q Query) ([]GameweekStat, error)
}
