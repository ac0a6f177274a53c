package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fpl-companion/internal/domain/aggregation"
	"github.com/riskibarqy/fpl-companion/internal/domain/playerstats"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

func playerIDs(rows []StatsRow) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Player.PlayerID)
	}
	return out
}

func TestQueryService_StatsAggregatesAndSorts(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService(t, seedStore())
	res, err := svc.Stats(context.Background(), StatsFilter{})
	require.NoError(t, err)

	page := res.Data
	assert.Equal(t, StatsSourceAggregated, page.Source)
	assert.Equal(t, 4, page.FromGameweek)
	assert.Equal(t, 4, page.ToGameweek)
	// Saka's provisional bonus counts once: 8 + 3.
	assert.Equal(t, []int{12, 10, 13, 11}, playerIDs(page.Players))
	assert.Equal(t, 11, page.Players[1].Player.EffectiveTotalPoints)
	assert.True(t, page.Provisional)
	assert.Equal(t, 4, page.TotalCount)
	assert.Equal(t, 1, page.TeamGoalsConceded[1])
	assert.Equal(t, 2, page.TeamGoalsConceded[2])
}

func TestQueryService_StatsFilterDoesNotPromoteIntoTop10(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService(t, seedStore())
	res, err := svc.Stats(context.Background(), StatsFilter{Gameweek: 4, Position: "MID"})
	require.NoError(t, err)

	page := res.Data
	assert.Equal(t, []int{10, 13}, playerIDs(page.Players))
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, []int{12, 10, 13, 11}, page.Top10[playerstats.StatTotalPoints])
	assert.Equal(t, 10, page.Leaders[playerstats.StatTotalPoints])
}

func TestQueryService_StatsLocationAndPaging(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService(t, seedStore())
	res, err := svc.Stats(context.Background(), StatsFilter{Gameweek: 4, Location: LocationAway, PageSize: 1, Page: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Data.TotalCount)
	assert.Equal(t, []int{11}, playerIDs(res.Data.Players))
}

func TestQueryService_StatsPerMillion(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService(t, seedStore())
	res, err := svc.Stats(context.Background(), StatsFilter{Gameweek: 4, Display: aggregation.DisplayPerMillion})
	require.NoError(t, err)

	// Saka: 11 points at 10.0m.
	for _, row := range res.Data.Players {
		if row.Player.PlayerID == 10 {
			assert.True(t, row.SortValueComputed)
			assert.Equal(t, "1.1", row.SortValue.String())
		}
	}
}

func TestQueryService_StatsTeamView(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService(t, seedStore())
	res, err := svc.Stats(context.Background(), StatsFilter{Gameweek: 4, TeamView: true, SortBy: playerstats.StatGoalsScored})
	require.NoError(t, err)

	require.NotEmpty(t, res.Data.Teams)
	assert.Equal(t, 3, res.Data.Teams[0].Team.TeamID)
	assert.Empty(t, res.Data.Players)
}

func TestQueryService_StatsRejectsInvalidFilter(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService(t, seedStore())
	cases := []StatsFilter{
		{SortBy: "shots_on_moon"},
		{Range: "last7"},
		{Position: "WING"},
		{PageSize: 501},
	}
	for _, f := range cases {
		if _, err := svc.Stats(context.Background(), f); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", f, err)
		}
	}
}

type stubStatsSource struct {
	page  ExternalStatsPage
	err   error
	query ExternalStatsQuery
	calls int
}

func (s *stubStatsSource) FetchStats(_ context.Context, q ExternalStatsQuery) (ExternalStatsPage, error) {
	s.query = q
	s.calls++
	return s.page, s.err
}

func TestQueryService_StatsFromRemoteSource(t *testing.T) {
	t.Parallel()

	source := &stubStatsSource{page: ExternalStatsPage{
		Players:      []aggregation.PlayerGameweek{{PlayerID: 12, EffectiveTotalPoints: 30}, {PlayerID: 10, EffectiveTotalPoints: 20}},
		TotalCount:   40,
		Top10ByField: map[string][]int{"total_points": {12, 10}},
	}}
	svc := newTestQueryService(t, seedStore(), func(cfg *QueryServiceConfig) { cfg.StatsSource = source })

	res, err := svc.Stats(context.Background(), StatsFilter{Range: RangeLast3})
	require.NoError(t, err)

	assert.Equal(t, StatsSourceREST, res.Data.Source)
	assert.Equal(t, 40, res.Data.TotalCount)
	assert.Equal(t, []int{12, 10}, res.Data.Top10[playerstats.StatTotalPoints])
	assert.Equal(t, "last3", source.query.GWFilter)
	assert.Equal(t, 2, source.query.From)
	assert.Equal(t, 4, source.query.To)
}

func TestQueryService_PlayerRangeAndCompare(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService(t, seedStore())
	ctx := context.Background()

	rng, err := svc.PlayerRange(ctx, 10, RangeLast3)
	require.NoError(t, err)
	assert.Equal(t, 2, rng.Data.FromGameweek)
	assert.Equal(t, 4, rng.Data.ToGameweek)
	assert.Equal(t, 13, rng.Data.EffectiveTotalPoints)
	assert.Equal(t, 160, rng.Data.Minutes)
	assert.Equal(t, "Saka", rng.Data.WebName)

	ranks, err := svc.CompareRanks(ctx, 10, RangeGameweek, RankByPosition)
	require.NoError(t, err)
	assert.Equal(t, 1, ranks.Data[playerstats.StatTotalPoints].Rank)

	all, err := svc.CompareRanks(ctx, 10, RangeGameweek, RankByAll)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Data[playerstats.StatTotalPoints].Rank)

	_, err = svc.PlayerRange(ctx, 404, RangeGameweek)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueryService_Top10ByStat(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService(t, seedStore())
	res, err := svc.Top10ByStat(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, Top10Key(4), res.Key)
	assert.Equal(t, []int{12, 10, 13, 11}, res.Data[playerstats.StatTotalPoints])
}

func TestQueryService_StatsRejectedBySourceHaltsKey(t *testing.T) {
	t.Parallel()

	source := &stubStatsSource{err: store.Permanent(errors.New("stats api status=401"))}
	svc := newTestQueryService(t, seedStore(), func(cfg *QueryServiceConfig) { cfg.StatsSource = source })

	res, err := svc.Stats(context.Background(), StatsFilter{})
	require.Error(t, err)
	_, err = svc.Stats(context.Background(), StatsFilter{})
	require.Error(t, err)

	snap, ok := svc.cache.Peek(res.Key)
	require.True(t, ok)
	assert.True(t, snap.Halted)
	assert.Equal(t, 1, source.calls)
}

func TestQueryService_SearchedStatsAreNotLeased(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService(t, seedStore(), func(cfg *QueryServiceConfig) { cfg.LeaseTTL = time.Minute })

	plain, err := svc.Stats(context.Background(), StatsFilter{})
	require.NoError(t, err)
	searched, err := svc.Stats(context.Background(), StatsFilter{Search: "Sal"})
	require.NoError(t, err)
	require.NotEqual(t, plain.Key, searched.Key)

	snap, ok := svc.cache.Peek(plain.Key)
	require.True(t, ok)
	assert.Equal(t, 1, snap.Observers)

	snap, ok = svc.cache.Peek(searched.Key)
	require.True(t, ok)
	assert.Zero(t, snap.Observers)
	assert.Equal(t, []int{13}, playerIDs(searched.Data.Players))
}
