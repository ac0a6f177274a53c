package tabular

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fpl-companion/internal/domain/player"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

type PlayerRepository struct {
	store store.Selector
}

func NewPlayerRepository(s store.Selector) *PlayerRepository {
	return &PlayerRepository{store: s}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	rows, err := r.store.Select(ctx, store.Query{
		Table:   tablePlayers,
		Columns: playerColumns,
		Order:   []store.Order{{Column: "player_id"}},
	})
	if err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID int) (player.Player, bool, error) {
	rows, err := r.store.Select(ctx, store.Query{
		Table:   tablePlayers,
		Columns: playerColumns,
		Where:   []store.Filter{store.Eq("player_id", playerID)},
		Limit:   1,
	})
	if err != nil {
		return player.Player{}, false, fmt.Errorf("select player %d: %w", playerID, err)
	}
	if len(rows) == 0 {
		return player.Player{}, false, nil
	}
	return playerFromRow(rows[0]), true, nil
}

func playerFromRow(row store.Row) player.Player {
	return player.Player{
		ID:                getInt(row, "player_id"),
		WebName:           getString(row, "web_name"),
		TeamID:            getInt(row, "team_id"),
		Position:          player.Position(getInt(row, "position")),
		CostTenths:        getIntPtr(row, "cost_tenths"),
		SelectedByPercent: getDecimalPtr(row, "selected_by_percent"),
	}
}
