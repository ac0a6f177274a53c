package statsapi

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fpl-companion/internal/domain/aggregation"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
	"github.com/riskibarqy/fpl-companion/internal/usecase"
)

var _ usecase.StatsSource = (*Client)(nil)

// FetchStats adapts a page of the endpoint to the stats views. Breaker
// rejections and transient failures surface as an unavailable dependency.
// Anything else, a 4xx or an undecodable body, is marked permanent so the
// cache halts the key instead of retrying it.
func (c *Client) FetchStats(ctx context.Context, q usecase.ExternalStatsQuery) (usecase.ExternalStatsPage, error) {
	page, err := c.Stats(ctx, Query{
		GWFilter: q.GWFilter,
		Location: q.Location,
		Page:     q.Page,
		PageSize: q.PageSize,
		SortBy:   q.SortBy,
		SortDir:  q.SortDir,
		Position: q.Position,
		Search:   q.Search,
	})
	if err != nil {
		if IsTransient(err) {
			return usecase.ExternalStatsPage{}, fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
		}
		return usecase.ExternalStatsPage{}, store.Permanent(err)
	}

	players := make([]aggregation.PlayerGameweek, 0, len(page.Players))
	for _, row := range page.Players {
		players = append(players, row.Aggregate(q.From, q.To))
	}
	return usecase.ExternalStatsPage{
		Players:           players,
		TeamGoalsConceded: page.TeamGoalsConceded,
		TotalCount:        page.TotalCount,
		Top10ByField:      page.Top10PlayerIDsByField,
	}, nil
}
