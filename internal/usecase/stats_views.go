package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/fpl-companion/internal/domain/aggregation"
	"github.com/riskibarqy/fpl-companion/internal/domain/cadence"
	"github.com/riskibarqy/fpl-companion/internal/domain/player"
	"github.com/riskibarqy/fpl-companion/internal/domain/playerstats"
	"github.com/riskibarqy/fpl-companion/internal/domain/ranking"
)

const (
	StatsSourceAggregated = "aggregated"
	StatsSourceREST       = "rest"
)

// StatsRow is one player line plus the value the table is sorted by, after
// display normalisation.
type StatsRow struct {
	Player aggregation.PlayerGameweek
	// SortValue is the normalised value of the sort stat. SortValueComputed is
	// false when the display mode fell back to the raw value.
	SortValue         decimal.Decimal
	SortValueComputed bool
}

type TeamStatsRow struct {
	Team              aggregation.TeamGameweek
	SortValue         decimal.Decimal
	SortValueComputed bool
}

// StatsPage is the payload of stats:all.
type StatsPage struct {
	Filter       StatsFilter
	FromGameweek int
	ToGameweek   int
	Source       string

	Players []StatsRow
	Teams   []TeamStatsRow

	TeamGoalsConceded map[int]int
	TotalCount        int

	// Top10 ranks the population before position and search filters, so a
	// filter never promotes a row into a highlight.
	Top10 map[playerstats.StatKey][]int
	// Leaders is computed over the filtered rows.
	Leaders map[playerstats.StatKey]int

	Provisional bool
}

// ExternalStatsQuery is what a remote stats source is asked for.
type ExternalStatsQuery struct {
	GWFilter string
	Location string
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
	Position string
	Search   string
	From     int
	To       int
}

type ExternalStatsPage struct {
	Players           []aggregation.PlayerGameweek
	TeamGoalsConceded map[int]int
	TotalCount        int
	Top10ByField      map[string][]int
}

// StatsSource serves precomputed stats pages.
type StatsSource interface {
	FetchStats(ctx context.Context, q ExternalStatsQuery) (ExternalStatsPage, error)
}

// Stats serves the stats table for filter.
func (s *QueryService) Stats(ctx context.Context, filter StatsFilter) (Result[StatsPage], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.Stats")
	defer span.End()

	f, err := filter.Normalize()
	if err != nil {
		return Result[StatsPage]{}, err
	}
	gw, ok, err := s.resolveGameweek(ctx, f.Gameweek)
	if err != nil {
		return Result[StatsPage]{Key: StatsKey(f)}, err
	}
	f.Gameweek = gw

	kind := cadence.KindAggregatedStats
	if f.Search != "" {
		kind = cadence.KindBulkSearch
	}
	return load(ctx, s, StatsKey(f), kind, ok, func(ctx context.Context) (StatsPage, error) {
		if s.statsSource != nil && !f.TeamView {
			return s.remoteStatsPage(ctx, f)
		}
		return s.aggregatedStatsPage(ctx, f)
	})
}

func (s *QueryService) aggregatedStatsPage(ctx context.Context, f StatsFilter) (StatsPage, error) {
	from, to := f.Range.Window(f.Gameweek)
	rows, err := s.statRows(ctx, from, to)
	if err != nil {
		return StatsPage{}, fmt.Errorf("load stat rows gw=%d..%d: %w", from, to, err)
	}
	players, err := s.playerIndex(ctx)
	if err != nil {
		return StatsPage{}, fmt.Errorf("load players: %w", err)
	}

	located := make([]playerstats.GameweekStat, 0, len(rows))
	for _, r := range rows {
		if f.matchesLocation(r.WasHome) {
			located = append(located, r)
		}
	}

	page := StatsPage{
		Filter:            f,
		FromGameweek:      from,
		ToGameweek:        to,
		Source:            StatsSourceAggregated,
		TeamGoalsConceded: aggregation.TeamGoalsConceded(located),
	}

	if f.TeamView {
		teams := aggregation.AggregateTeams(located, page.TeamGoalsConceded)
		fillTeamPage(&page, teams, f)
		return page, nil
	}

	aggregates := aggregation.AggregatePlayers(located, aggregation.ByPlayer)
	for i := range aggregates {
		if p, ok := players[aggregates[i].PlayerID]; ok {
			aggregates[i] = aggregates[i].WithPlayer(p)
		}
		if aggregates[i].Provisional {
			page.Provisional = true
		}
	}
	fillPlayerPage(&page, aggregates, f)
	return page, nil
}

func (s *QueryService) remoteStatsPage(ctx context.Context, f StatsFilter) (StatsPage, error) {
	from, to := f.Range.Window(f.Gameweek)
	gwFilter := string(f.Range)
	if f.Range == RangeGameweek {
		gwFilter = fmt.Sprintf("gw%d", f.Gameweek)
	}

	remote, err := s.statsSource.FetchStats(ctx, ExternalStatsQuery{
		GWFilter: gwFilter,
		Location: string(f.Location),
		Page:     f.Page,
		PageSize: f.PageSize,
		SortBy:   string(f.SortBy),
		SortDir:  f.SortDir,
		Position: f.Position,
		Search:   f.Search,
		From:     from,
		To:       to,
	})
	if err != nil {
		return StatsPage{}, fmt.Errorf("fetch remote stats: %w", err)
	}

	page := StatsPage{
		Filter:            f,
		FromGameweek:      from,
		ToGameweek:        to,
		Source:            StatsSourceREST,
		TeamGoalsConceded: remote.TeamGoalsConceded,
		Top10:             make(map[playerstats.StatKey][]int, len(remote.Top10ByField)),
	}
	if page.TeamGoalsConceded == nil {
		page.TeamGoalsConceded = map[int]int{}
	}
	for field, ids := range remote.Top10ByField {
		page.Top10[playerstats.StatKey(field)] = ids
	}
	for _, p := range remote.Players {
		if p.Provisional {
			page.Provisional = true
		}
	}

	// The endpoint pages and sorts server side; keep its order and count.
	rows := make([]StatsRow, 0, len(remote.Players))
	for _, p := range remote.Players {
		v, computed := sortValue(p, f)
		rows = append(rows, StatsRow{Player: p, SortValue: v, SortValueComputed: computed})
	}
	page.Players = rows
	page.TotalCount = remote.TotalCount
	page.Leaders = ranking.Rank(remote.Players, ranking.AllSpecs()).Leaders()
	return page, nil
}

// fillPlayerPage ranks, filters, sorts and pages aggregates into page.
func fillPlayerPage(page *StatsPage, aggregates []aggregation.PlayerGameweek, f StatsFilter) {
	pos, hasPos := f.position()
	keep := func(p aggregation.PlayerGameweek) bool {
		if hasPos && p.Position != pos {
			return false
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.WebName), f.Search) {
			return false
		}
		return true
	}

	pops := ranking.RankPopulations(aggregates, keep, ranking.AllSpecs())
	page.Top10 = pops.Global.TopNSets(topN)
	page.Leaders = pops.Filtered.Leaders()

	rows := make([]StatsRow, 0, len(aggregates))
	for _, p := range aggregates {
		if !keep(p) {
			continue
		}
		v, computed := sortValue(p, f)
		rows = append(rows, StatsRow{Player: p, SortValue: v, SortValueComputed: computed})
	}
	sortStatsRows(rows, f)

	page.TotalCount = len(rows)
	page.Players = paginate(rows, f.Page, f.PageSize)
}

func fillTeamPage(page *StatsPage, teams []aggregation.TeamGameweek, f StatsFilter) {
	pops := ranking.RankPopulations(teams, nil, ranking.AllSpecs())
	page.Top10 = pops.Global.TopNSets(topN)
	page.Leaders = pops.Filtered.Leaders()

	rows := make([]TeamStatsRow, 0, len(teams))
	for _, t := range teams {
		if t.Provisional {
			page.Provisional = true
		}
		value, ok := t.Stat(f.SortBy)
		row := TeamStatsRow{Team: t}
		if ok {
			// Team views never normalise by price; per 90 uses summed minutes.
			mode := f.Display
			if mode == aggregation.DisplayPerMillion {
				mode = aggregation.DisplayTotal
			}
			row.SortValue, row.SortValueComputed = aggregation.Normalize(value, mode, t.Minutes, nil)
		}
		rows = append(rows, row)
	}

	desc := f.SortDir != "asc"
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.SortValue.Equal(b.SortValue) {
			if desc {
				return a.SortValue.GreaterThan(b.SortValue)
			}
			return a.SortValue.LessThan(b.SortValue)
		}
		return a.Team.TeamID < b.Team.TeamID
	})

	page.TotalCount = len(rows)
	page.Teams = paginate(rows, f.Page, f.PageSize)
}

// sortValue returns the display-normalised value of the sort stat. Rows
// without the stat sort last.
func sortValue(p aggregation.PlayerGameweek, f StatsFilter) (decimal.Decimal, bool) {
	value, ok := p.Stat(f.SortBy)
	if !ok {
		return decimal.Zero, false
	}
	return aggregation.Normalize(value, f.Display, p.Minutes, p.CostTenths)
}

func sortStatsRows(rows []StatsRow, f StatsFilter) {
	desc := f.SortDir != "asc"
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		_, aHas := a.Player.Stat(f.SortBy)
		_, bHas := b.Player.Stat(f.SortBy)
		if aHas != bHas {
			return aHas
		}
		if !a.SortValue.Equal(b.SortValue) {
			if desc {
				return a.SortValue.GreaterThan(b.SortValue)
			}
			return a.SortValue.LessThan(b.SortValue)
		}
		return a.Player.PlayerID < b.Player.PlayerID
	})
}

func paginate[T any](rows []T, page, size int) []T {
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	start := (page - 1) * size
	if start < 0 {
		start = 0
	}
	if start >= len(rows) {
		return []T{}
	}
	end := min(start+size, len(rows))
	return rows[start:end]
}

// PlayerRange aggregates one player's rows over r ending at the current gameweek.
func (s *QueryService) PlayerRange(ctx context.Context, playerID int, r StatRange) (Result[aggregation.PlayerGameweek], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.PlayerRange")
	defer span.End()

	if playerID <= 0 {
		return Result[aggregation.PlayerGameweek]{}, invalidf("player id must be positive")
	}
	pl, err := s.lookupPlayer(ctx, playerID)
	if err != nil {
		return Result[aggregation.PlayerGameweek]{}, err
	}
	gw, ok, err := s.resolveGameweek(ctx, 0)
	if err != nil {
		return Result[aggregation.PlayerGameweek]{Key: PlayerRangeKey(playerID, r)}, err
	}

	return load(ctx, s, PlayerRangeKey(playerID, r), cadence.KindAggregatedStats, ok, func(ctx context.Context) (aggregation.PlayerGameweek, error) {
		from, to := r.Window(gw)
		rows, err := s.statRows(ctx, from, to)
		if err != nil {
			return aggregation.PlayerGameweek{}, err
		}
		own := make([]playerstats.GameweekStat, 0)
		for _, row := range rows {
			if row.PlayerID == playerID {
				own = append(own, row)
			}
		}

		agg := aggregation.AggregatePlayer(own)
		agg.PlayerID = playerID
		agg.FromGameweek, agg.ToGameweek = from, to
		return agg.WithPlayer(pl), nil
	})
}

// CompareRanks ranks one player against every player, or against players of
// the same position, over r.
func (s *QueryService) CompareRanks(ctx context.Context, playerID int, r StatRange, rankBy RankBy) (Result[map[playerstats.StatKey]ranking.Entry], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.CompareRanks")
	defer span.End()

	if playerID <= 0 {
		return Result[map[playerstats.StatKey]ranking.Entry]{}, invalidf("player id must be positive")
	}
	pl, err := s.lookupPlayer(ctx, playerID)
	if err != nil {
		return Result[map[playerstats.StatKey]ranking.Entry]{}, err
	}
	gw, ok, err := s.resolveGameweek(ctx, 0)
	if err != nil {
		return Result[map[playerstats.StatKey]ranking.Entry]{Key: CompareRanksKey(playerID, r, rankBy)}, err
	}

	return load(ctx, s, CompareRanksKey(playerID, r, rankBy), cadence.KindAggregatedStats, ok, func(ctx context.Context) (map[playerstats.StatKey]ranking.Entry, error) {
		from, to := r.Window(gw)
		rows, err := s.statRows(ctx, from, to)
		if err != nil {
			return nil, err
		}
		players, err := s.playerIndex(ctx)
		if err != nil {
			return nil, err
		}

		aggregates := aggregation.AggregatePlayers(rows, aggregation.ByPlayer)
		population := make([]aggregation.PlayerGameweek, 0, len(aggregates))
		for _, agg := range aggregates {
			if p, ok := players[agg.PlayerID]; ok {
				agg = agg.WithPlayer(p)
			}
			if rankBy == RankByPosition && agg.Position != pl.Position {
				continue
			}
			population = append(population, agg)
		}

		table := ranking.Rank(population, ranking.CompareSpecs([]player.Position{pl.Position}))
		return table.RanksOf(playerID), nil
	})
}

// Top10ByStat returns, per stat, the ids of the ten best players of gw.
func (s *QueryService) Top10ByStat(ctx context.Context, gw int) (Result[map[playerstats.StatKey][]int], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.Top10ByStat")
	defer span.End()

	resolved, ok, err := s.resolveGameweek(ctx, gw)
	if err != nil {
		return Result[map[playerstats.StatKey][]int]{Key: Top10Key(gw)}, err
	}

	return load(ctx, s, Top10Key(resolved), cadence.KindAggregatedStats, ok, func(ctx context.Context) (map[playerstats.StatKey][]int, error) {
		rows, err := s.statRows(ctx, resolved, resolved)
		if err != nil {
			return nil, err
		}
		players, err := s.playerIndex(ctx)
		if err != nil {
			return nil, err
		}

		aggregates := aggregation.AggregatePlayers(rows, aggregation.ByPlayer)
		for i := range aggregates {
			if p, ok := players[aggregates[i].PlayerID]; ok {
				aggregates[i] = aggregates[i].WithPlayer(p)
			}
		}
		return ranking.Rank(aggregates, ranking.AllSpecs()).TopNSets(topN), nil
	})
}

func (s *QueryService) lookupPlayer(ctx context.Context, playerID int) (player.Player, error) {
	players, err := s.playerIndex(ctx)
	if err != nil {
		return player.Player{}, fmt.Errorf("load players: %w", err)
	}
	pl, ok := players[playerID]
	if !ok {
		return player.Player{}, fmt.Errorf("%w: player=%d", ErrNotFound, playerID)
	}
	return pl, nil
}
