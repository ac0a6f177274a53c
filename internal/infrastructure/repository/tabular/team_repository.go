package tabular

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fpl-companion/internal/domain/team"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

type TeamRepository struct {
	store store.Selector
}

func NewTeamRepository(s store.Selector) *TeamRepository {
	return &TeamRepository{store: s}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	rows, err := r.store.Select(ctx, store.Query{
		Table:   tableTeams,
		Columns: teamColumns,
		Order:   []store.Order{{Column: "team_id"}},
	})
	if err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Team{
			ID:        getInt(row, "team_id"),
			ShortName: getString(row, "short_name"),
			Name:      getString(row, "team_name"),
		})
	}
	return out, nil
}
