package tabular

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fpl-companion/internal/domain/leaguestanding"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

type StandingRepository struct {
	store store.Selector
}

func NewStandingRepository(s store.Selector) *StandingRepository {
	return &StandingRepository{store: s}
}

func (r *StandingRepository) ListLiveByLeague(ctx context.Context, leagueID int) ([]leaguestanding.Standing, error) {
	rows, err := r.store.Select(ctx, store.Query{
		Table:   tableLiveStandings,
		Columns: liveStandingColumns,
		Where:   []store.Filter{store.Eq("league_id", leagueID)},
		Order:   []store.Order{{Column: "rank"}, {Column: "manager_id"}},
	})
	if err != nil {
		return nil, fmt.Errorf("select live standings league=%d: %w", leagueID, err)
	}

	out := make([]leaguestanding.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, leaguestanding.Standing{
			LeagueID:        getInt(row, "league_id"),
			ManagerID:       getInt(row, "manager_id"),
			EntryName:       getString(row, "entry_name"),
			PlayerName:      getString(row, "player_name"),
			Rank:            getInt(row, "rank"),
			LastRank:        getInt(row, "last_rank"),
			GameweekPoints:  getInt(row, "event_total"),
			TotalPoints:     getInt(row, "total"),
			SourceUpdatedAt: getTimePtr(row, "updated_at"),
		})
	}
	return out, nil
}
