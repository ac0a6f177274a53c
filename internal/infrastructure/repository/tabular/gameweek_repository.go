package tabular

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fpl-companion/internal/domain/gameweek"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

type GameweekRepository struct {
	store store.Selector
}

func NewGameweekRepository(s store.Selector) *GameweekRepository {
	return &GameweekRepository{store: s}
}

func (r *GameweekRepository) Current(ctx context.Context) (gameweek.Gameweek, bool, error) {
	return r.first(ctx, "is_current")
}

func (r *GameweekRepository) Next(ctx context.Context) (gameweek.Gameweek, bool, error) {
	return r.first(ctx, "is_next")
}

func (r *GameweekRepository) first(ctx context.Context, flag string) (gameweek.Gameweek, bool, error) {
	rows, err := r.store.Select(ctx, store.Query{
		Table:   tableGameweeks,
		Columns: gameweekColumns,
		Where:   []store.Filter{store.Eq(flag, true)},
		Order:   []store.Order{{Column: "id"}},
		Limit:   1,
	})
	if err != nil {
		return gameweek.Gameweek{}, false, fmt.Errorf("select gameweek where %s: %w", flag, err)
	}
	if len(rows) == 0 {
		return gameweek.Gameweek{}, false, nil
	}
	return gameweekFromRow(rows[0]), true, nil
}

func (r *GameweekRepository) List(ctx context.Context) ([]gameweek.Gameweek, error) {
	rows, err := r.store.Select(ctx, store.Query{
		Table:   tableGameweeks,
		Columns: gameweekColumns,
		Order:   []store.Order{{Column: "id"}},
	})
	if err != nil {
		return nil, fmt.Errorf("select gameweeks: %w", err)
	}

	out := make([]gameweek.Gameweek, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameweekFromRow(row))
	}
	return out, nil
}

func gameweekFromRow(row store.Row) gameweek.Gameweek {
	return gameweek.Gameweek{
		ID:              getInt(row, "id"),
		Name:            getString(row, "name"),
		DeadlineTime:    getTime(row, "deadline_time"),
		IsCurrent:       getBool(row, "is_current"),
		IsNext:          getBool(row, "is_next"),
		IsPrevious:      getBool(row, "is_previous"),
		Finished:        getBool(row, "finished"),
		DataChecked:     getBool(row, "data_checked"),
		FPLRanksUpdated: getBool(row, "fpl_ranks_updated"),
		ReleaseTime:     getTimePtr(row, "release_time"),
	}
}
