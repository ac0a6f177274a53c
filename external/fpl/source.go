package fpl

import (
	"context"

	"github.com/riskibarqy/fpl-companion/internal/domain/fixture"
	"github.com/riskibarqy/fpl-companion/internal/domain/gameweek"
	"github.com/riskibarqy/fpl-companion/internal/usecase"
)

var _ usecase.UpstreamSource = (*Client)(nil)

func (c *Client) FetchGameweeks(ctx context.Context) ([]gameweek.Gameweek, error) {
	bootstrap, err := c.BootstrapStatic(ctx)
	if err != nil {
		return nil, err
	}
	return bootstrap.Gameweeks, nil
}

func (c *Client) FetchFixtures(ctx context.Context, event int) ([]fixture.Fixture, error) {
	return c.Fixtures(ctx, event)
}
