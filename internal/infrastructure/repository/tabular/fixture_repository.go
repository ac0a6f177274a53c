package tabular

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fpl-companion/internal/domain/fixture"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

type FixtureRepository struct {
	store store.Selector
}

func NewFixtureRepository(s store.Selector) *FixtureRepository {
	return &FixtureRepository{store: s}
}

func (r *FixtureRepository) ListByGameweek(ctx context.Context, gw int) ([]fixture.Fixture, error) {
	return r.list(ctx, []store.Filter{store.Eq("gameweek", gw)})
}

func (r *FixtureRepository) ListByGameweekRange(ctx context.Context, from, to int) ([]fixture.Fixture, error) {
	return r.list(ctx, []store.Filter{store.Gte("gameweek", from), store.Lte("gameweek", to)})
}

func (r *FixtureRepository) list(ctx context.Context, where []store.Filter) ([]fixture.Fixture, error) {
	rows, err := r.store.Select(ctx, store.Query{
		Table:   tableFixtures,
		Columns: fixtureColumns,
		Where:   where,
		Order:   []store.Order{{Column: "gameweek"}, {Column: "kickoff_time"}, {Column: "fixture_id"}},
	})
	if err != nil {
		return nil, fmt.Errorf("select fixtures: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixtureFromRow(row))
	}
	return out, nil
}

func fixtureFromRow(row store.Row) fixture.Fixture {
	return fixture.Fixture{
		ID:                  getInt(row, "fixture_id"),
		Gameweek:            getInt(row, "gameweek"),
		HomeTeamID:          getInt(row, "home_team_id"),
		AwayTeamID:          getInt(row, "away_team_id"),
		HomeScore:           getIntPtr(row, "home_score"),
		AwayScore:           getIntPtr(row, "away_score"),
		Started:             getBool(row, "started"),
		Finished:            getBool(row, "finished"),
		FinishedProvisional: getBool(row, "finished_provisional"),
		Minutes:             getIntPtr(row, "minutes"),
		KickoffTime:         getTimePtr(row, "kickoff_time"),
	}
}
