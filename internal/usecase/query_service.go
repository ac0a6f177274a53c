package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/fpl-companion/internal/domain/cadence"
	"github.com/riskibarqy/fpl-companion/internal/domain/fixture"
	"github.com/riskibarqy/fpl-companion/internal/domain/gameweek"
	"github.com/riskibarqy/fpl-companion/internal/domain/leaguestanding"
	"github.com/riskibarqy/fpl-companion/internal/domain/manager"
	"github.com/riskibarqy/fpl-companion/internal/domain/player"
	"github.com/riskibarqy/fpl-companion/internal/domain/playerstats"
	"github.com/riskibarqy/fpl-companion/internal/domain/refreshlog"
	"github.com/riskibarqy/fpl-companion/internal/domain/refreshstate"
	"github.com/riskibarqy/fpl-companion/internal/domain/team"
	"github.com/riskibarqy/fpl-companion/internal/platform/cache"
	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
)

const defaultLeaseTTL = 2 * time.Minute

// StateReader exposes the published refresh state to option funcs.
type StateReader interface {
	State() refreshstate.State
}

type QueryServiceConfig struct {
	Cache       *cache.Client
	State       StateReader
	Gameweeks   gameweek.Repository
	Fixtures    fixture.Repository
	Teams       team.Repository
	Players     player.Repository
	Stats       playerstats.Repository
	RefreshLogs refreshlog.Repository
	Managers    manager.Repository
	Standings   leaguestanding.Repository
	// StatsSource, when set, serves player stats pages instead of local aggregation.
	StatsSource StatsSource
	// IsPermanent reports store errors that retrying cannot fix, such as a
	// missing table. Nil treats every error as transient.
	IsPermanent func(error) bool
	// LeaseTTL keeps a key observed after a view reads it. Zero uses the default,
	// a negative value disables leases.
	LeaseTTL time.Duration
	Logger   *logging.Logger
}

// QueryService owns every named query. Each query is one cache key whose
// cadence follows the published refresh state.
type QueryService struct {
	cache       *cache.Client
	state       StateReader
	gameweeks   gameweek.Repository
	fixtures    fixture.Repository
	teams       team.Repository
	players     player.Repository
	stats       playerstats.Repository
	refreshLogs refreshlog.Repository
	managers    manager.Repository
	standings   leaguestanding.Repository
	statsSource StatsSource
	isPermanent func(error) bool
	leaseTTL    time.Duration
	logger      *logging.Logger

	mu     sync.Mutex
	leases map[string]*lease
	pins   map[string]func()
}

type lease struct {
	release func()
	timer   *time.Timer
}

func NewQueryService(cfg QueryServiceConfig) *QueryService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	state := cfg.State
	if state == nil {
		state = NewStateSignal(refreshstate.Idle)
	}
	leaseTTL := cfg.LeaseTTL
	if leaseTTL == 0 {
		leaseTTL = defaultLeaseTTL
	}
	isPermanent := cfg.IsPermanent
	if isPermanent == nil {
		isPermanent = func(error) bool { return false }
	}

	return &QueryService{
		cache:       cfg.Cache,
		state:       state,
		gameweeks:   cfg.Gameweeks,
		fixtures:    cfg.Fixtures,
		teams:       cfg.Teams,
		players:     cfg.Players,
		stats:       cfg.Stats,
		refreshLogs: cfg.RefreshLogs,
		managers:    cfg.Managers,
		standings:   cfg.Standings,
		statsSource: cfg.StatsSource,
		isPermanent: isPermanent,
		leaseTTL:    leaseTTL,
		logger:      logger.Named("queries"),
		leases:      make(map[string]*lease),
		pins:        make(map[string]func()),
	}
}

// Result is a named query's payload plus the cache metadata views render.
type Result[T any] struct {
	Key       string
	Data      T
	Enabled   bool
	Loading   bool
	UpdatedAt *time.Time
	// Error carries a transient failure while prior data is still served.
	Error string
}

func (s *QueryService) options(kind cadence.Kind, enabled bool) cache.OptionsFunc {
	return func() cache.Options {
		cad := cadence.For(s.state.State(), kind)
		return cache.Options{
			StaleTTL:        cad.StaleTTL,
			RefetchInterval: cad.RefetchInterval,
			Enabled:         enabled,
			Retry:           1,
		}
	}
}

// load reads key through the cache and extends the view lease on it.
func load[T any](ctx context.Context, s *QueryService, key string, kind cadence.Kind, enabled bool, fetch func(ctx context.Context) (T, error)) (Result[T], error) {
	optsFn := s.options(kind, enabled)
	// Bulk search keys never poll, so a lease would only pin their entries.
	if enabled && kind != cadence.KindBulkSearch {
		s.lease(key, cache.Typed(fetch), optsFn)
	}

	data, snap, err := cache.Load(ctx, s.cache, key, fetch, optsFn)
	annotateQuery(ctx, key, kind, snap.Loading, err)
	res := Result[T]{Key: key, Enabled: enabled, Loading: snap.Loading}
	if !snap.UpdatedAt.IsZero() {
		updated := snap.UpdatedAt
		res.UpdatedAt = &updated
	}
	if err != nil {
		return res, err
	}
	res.Data = data
	if snap.Err != nil {
		res.Error = snap.Err.Error()
	}
	return res, nil
}

// lease keeps key observed for leaseTTL after the last read so polling
// continues while views keep asking for it.
func (s *QueryService) lease(key string, fetcher cache.Fetcher, optsFn cache.OptionsFunc) {
	if s.leaseTTL < 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.leases[key]; ok && l.timer.Stop() {
		l.timer.Reset(s.leaseTTL)
		return
	}

	l := &lease{release: s.cache.Observe(key, fetcher, optsFn)}
	l.timer = time.AfterFunc(s.leaseTTL, func() { s.expire(key, l) })
	s.leases[key] = l
}

func (s *QueryService) expire(key string, l *lease) {
	s.mu.Lock()
	if s.leases[key] == l {
		delete(s.leases, key)
	}
	s.mu.Unlock()
	l.release()
}

// pin observes key until unpinned. Pins back the dashboard queries the state
// machine and telemetry depend on.
func (s *QueryService) pin(key string, fetcher cache.Fetcher, optsFn cache.OptionsFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pins[key]; ok {
		return
	}
	s.pins[key] = s.cache.Observe(key, fetcher, optsFn)
	s.logger.Debug("query pinned", "key", key)
}

// unpinPrefix drops every pin under prefix except keep.
func (s *QueryService) unpinPrefix(prefix, keep string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, release := range s.pins {
		if key == keep || !strings.HasPrefix(key, prefix) {
			continue
		}
		release()
		delete(s.pins, key)
		s.logger.Debug("query unpinned", "key", key)
	}
}

// WatchCore keeps the queries behind the refresh state and the freshness
// report polling: both gameweek rows, the current fixtures, the phase log
// and the latest deadline batch.
func (s *QueryService) WatchCore(currentGW int) {
	s.pin(KeyGameweekCurrent, cache.Typed(s.fetchCurrentGameweek), s.options(cadence.KindGameweek, true))
	s.pin(KeyGameweekNext, cache.Typed(s.fetchNextGameweek), s.options(cadence.KindGameweek, true))
	s.pin(KeyPhasesLatest, cache.Typed(s.fetchPhases), s.options(cadence.KindTelemetry, true))
	s.pin(KeyDeadlineBatchLatest, cache.Typed(s.fetchDeadlineBatch), s.options(cadence.KindTelemetry, true))

	if currentGW <= 0 {
		s.unpinPrefix(PrefixFixtures, "")
		return
	}
	key := FixturesKey(currentGW)
	s.unpinPrefix(PrefixFixtures, key)
	s.pin(key, cache.Typed(s.fixturesFetcher(currentGW)), s.options(cadence.KindFixtures, true))
}

// Stop releases every pin and lease.
func (s *QueryService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, release := range s.pins {
		release()
		delete(s.pins, key)
	}
	for key, l := range s.leases {
		l.timer.Stop()
		l.release()
		delete(s.leases, key)
	}
}

// Reset clears a halted key so it is fetched again, used after a schema or
// auth fix.
func (s *QueryService) Reset(key string) bool {
	return s.cache.Reset(key)
}

// Invalidate marks every key under prefix stale and returns how many matched.
func (s *QueryService) Invalidate(prefix string) int {
	return s.cache.Invalidate(prefix)
}

func (s *QueryService) CurrentGameweek(ctx context.Context) (Result[*gameweek.Gameweek], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.CurrentGameweek")
	defer span.End()

	return load(ctx, s, KeyGameweekCurrent, cadence.KindGameweek, true, s.fetchCurrentGameweek)
}

func (s *QueryService) NextGameweek(ctx context.Context) (Result[*gameweek.Gameweek], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.NextGameweek")
	defer span.End()

	return load(ctx, s, KeyGameweekNext, cadence.KindGameweek, true, s.fetchNextGameweek)
}

// resolveGameweek maps 0 to the current gameweek. ok=false means there is no
// current gameweek and dependent queries stay disabled.
func (s *QueryService) resolveGameweek(ctx context.Context, gw int) (int, bool, error) {
	if gw > 0 {
		return gw, true, nil
	}
	current, err := s.CurrentGameweek(ctx)
	if err != nil {
		return 0, false, err
	}
	if current.Data == nil {
		return 0, false, nil
	}
	return current.Data.ID, true, nil
}

// Fixtures lists the fixtures of gw, or of the current gameweek when gw is 0.
func (s *QueryService) Fixtures(ctx context.Context, gw int) (Result[[]fixture.Fixture], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.Fixtures")
	defer span.End()

	resolved, ok, err := s.resolveGameweek(ctx, gw)
	if err != nil {
		return Result[[]fixture.Fixture]{Key: FixturesKey(gw)}, err
	}
	return load(ctx, s, FixturesKey(resolved), cadence.KindFixtures, ok, s.fixturesFetcher(resolved))
}

func (s *QueryService) LatestPhases(ctx context.Context) (Result[PhaseReport], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.LatestPhases")
	defer span.End()

	return load(ctx, s, KeyPhasesLatest, cadence.KindTelemetry, true, s.fetchPhases)
}

func (s *QueryService) LatestDeadlineBatch(ctx context.Context) (Result[*refreshlog.DeadlineBatchRun], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.LatestDeadlineBatch")
	defer span.End()

	return load(ctx, s, KeyDeadlineBatchLatest, cadence.KindTelemetry, true, s.fetchDeadlineBatch)
}

func (s *QueryService) ManagerPicks(ctx context.Context, managerID, gw int) (Result[[]manager.Pick], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ManagerPicks")
	defer span.End()

	if managerID <= 0 {
		return Result[[]manager.Pick]{}, invalidf("manager id must be positive")
	}
	resolved, ok, err := s.resolveGameweek(ctx, gw)
	if err != nil {
		return Result[[]manager.Pick]{Key: ManagerPicksKey(managerID, gw)}, err
	}
	return load(ctx, s, ManagerPicksKey(managerID, resolved), cadence.KindSquadPicks, ok, func(ctx context.Context) ([]manager.Pick, error) {
		picks, err := s.managers.ListPicks(ctx, managerID, resolved)
		if err != nil {
			return nil, err
		}
		return nonNil(picks), nil
	})
}

func (s *QueryService) LiveStandings(ctx context.Context, leagueID int) (Result[[]leaguestanding.Standing], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.LiveStandings")
	defer span.End()

	if leagueID <= 0 {
		return Result[[]leaguestanding.Standing]{}, invalidf("league id must be positive")
	}
	return load(ctx, s, StandingsLiveKey(leagueID), cadence.KindSquadPicks, true, func(ctx context.Context) ([]leaguestanding.Standing, error) {
		rows, err := s.standings.ListLiveByLeague(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return nonNil(rows), nil
	})
}

func (s *QueryService) fetchCurrentGameweek(ctx context.Context) (*gameweek.Gameweek, error) {
	gw, ok, err := s.gameweeks.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &gw, nil
}

func (s *QueryService) fetchNextGameweek(ctx context.Context) (*gameweek.Gameweek, error) {
	gw, ok, err := s.gameweeks.Next(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &gw, nil
}

func (s *QueryService) fixturesFetcher(gw int) func(ctx context.Context) ([]fixture.Fixture, error) {
	return func(ctx context.Context) ([]fixture.Fixture, error) {
		rows, err := s.fixtures.ListByGameweek(ctx, gw)
		if err != nil {
			return nil, err
		}
		return nonNil(rows), nil
	}
}

func (s *QueryService) fetchDeadlineBatch(ctx context.Context) (*refreshlog.DeadlineBatchRun, error) {
	run, ok, err := s.refreshLogs.LatestDeadlineBatch(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &run, nil
}

// playerIndex is the static player list keyed by id, shared by every stats view.
func (s *QueryService) playerIndex(ctx context.Context) (map[int]player.Player, error) {
	res, err := load(ctx, s, keyPlayersAll, cadence.KindBulkSearch, true, func(ctx context.Context) (map[int]player.Player, error) {
		rows, err := s.players.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make(map[int]player.Player, len(rows))
		for _, p := range rows {
			out[p.ID] = p
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (s *QueryService) Teams(ctx context.Context) (Result[[]team.Team], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.Teams")
	defer span.End()

	return load(ctx, s, keyTeamsAll, cadence.KindBulkSearch, true, func(ctx context.Context) ([]team.Team, error) {
		rows, err := s.teams.List(ctx)
		if err != nil {
			return nil, err
		}
		return nonNil(rows), nil
	})
}

// statRows reads the raw rows of a gameweek window through the cache.
func (s *QueryService) statRows(ctx context.Context, from, to int) ([]playerstats.GameweekStat, error) {
	res, err := load(ctx, s, statsRowsKey(from, to), cadence.KindAggregatedStats, true, func(ctx context.Context) ([]playerstats.GameweekStat, error) {
		rows, err := s.stats.List(ctx, playerstats.Query{FromGameweek: from, ToGameweek: to})
		if err != nil {
			return nil, err
		}
		return nonNil(rows), nil
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
