package tabular

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fpl-companion/internal/domain/manager"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

type ManagerRepository struct {
	store store.Selector
}

func NewManagerRepository(s store.Selector) *ManagerRepository {
	return &ManagerRepository{store: s}
}

func (r *ManagerRepository) ListPicks(ctx context.Context, managerID, gw int) ([]manager.Pick, error) {
	rows, err := r.store.Select(ctx, store.Query{
		Table:   tableManagerPicks,
		Columns: managerPickColumns,
		Where:   []store.Filter{store.Eq("manager_id", managerID), store.Eq("gameweek", gw)},
		Order:   []store.Order{{Column: "position"}},
	})
	if err != nil {
		return nil, fmt.Errorf("select picks manager=%d gameweek=%d: %w", managerID, gw, err)
	}

	out := make([]manager.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, manager.Pick{
			ManagerID:     getInt(row, "manager_id"),
			Gameweek:      getInt(row, "gameweek"),
			PlayerID:      getInt(row, "player_id"),
			Slot:          getInt(row, "position"),
			Multiplier:    getInt(row, "multiplier"),
			IsCaptain:     getBool(row, "is_captain"),
			IsViceCaptain: getBool(row, "is_vice_captain"),
		})
	}
	return out, nil
}
