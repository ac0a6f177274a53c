package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sourcegraph/conc"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fpl-companion/external/fpl"
	"github.com/riskibarqy/fpl-companion/external/statsapi"
	"github.com/riskibarqy/fpl-companion/internal/config"
	"github.com/riskibarqy/fpl-companion/internal/domain/refreshlog"
	"github.com/riskibarqy/fpl-companion/internal/domain/refreshstate"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/repository/tabular"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/telemetrysink"
	"github.com/riskibarqy/fpl-companion/internal/interfaces/httpapi"
	"github.com/riskibarqy/fpl-companion/internal/platform/cache"
	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
	"github.com/riskibarqy/fpl-companion/internal/platform/resilience"
	"github.com/riskibarqy/fpl-companion/internal/usecase"
)

const (
	dbPingTimeout   = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App holds the wired orchestrator and its HTTP view surface.
type App struct {
	cfg    config.Config
	logger *logging.Logger

	server    *http.Server
	cache     *cache.Client
	queries   *usecase.QueryService
	refresh   *usecase.RefreshStateService
	freshness *usecase.FreshnessService
	db        *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{cfg: cfg, logger: logger}

	driver, err := a.openStore()
	if err != nil {
		return nil, err
	}
	guarded := store.NewGuarded(driver, a.breaker("store", cfg.StoreCircuit))

	queryCache, err := cache.New(cache.Config{
		MaxEntries:  cfg.CacheMaxEntries,
		Workers:     cfg.CacheWorkers,
		IsPermanent: store.IsPermanent,
		Logger:      logger.Named("cache"),
	})
	if err != nil {
		a.closeDB()
		return nil, fmt.Errorf("build query cache: %w", err)
	}
	a.cache = queryCache

	window, err := refreshstate.NewWindow(cfg.PriceWindowUTCOffset, cfg.PriceWindowTimezone, cfg.PriceWindowStart, cfg.PriceWindowEnd)
	if err != nil {
		a.closeDB()
		queryCache.Close()
		return nil, fmt.Errorf("build price window: %w", err)
	}

	signal := usecase.NewStateSignal(refreshstate.Idle)
	a.queries = usecase.NewQueryService(usecase.QueryServiceConfig{
		Cache:       queryCache,
		State:       signal,
		Gameweeks:   tabular.NewGameweekRepository(guarded),
		Fixtures:    tabular.NewFixtureRepository(guarded),
		Teams:       tabular.NewTeamRepository(guarded),
		Players:     tabular.NewPlayerRepository(guarded),
		Stats:       tabular.NewPlayerStatsRepository(guarded),
		RefreshLogs: tabular.NewRefreshLogRepository(guarded),
		Managers:    tabular.NewManagerRepository(guarded),
		Standings:   tabular.NewStandingRepository(guarded),
		StatsSource: a.statsSource(),
		IsPermanent: store.IsPermanent,
		LeaseTTL:    cfg.CacheLeaseTTL,
		Logger:      logger,
	})

	a.refresh = usecase.NewRefreshStateService(usecase.RefreshStateConfig{
		Queries:  a.queries,
		Cache:    queryCache,
		Signal:   signal,
		Window:   window,
		Interval: cfg.RefreshEvalInterval,
		Logger:   logger,
	})

	var sink refreshlog.Sink = telemetrysink.Nop{}
	if cfg.TelemetrySnapshotEnabled {
		sink = telemetrysink.New(guarded)
	}
	a.freshness = usecase.NewFreshnessService(usecase.FreshnessConfig{
		Queries:          a.queries,
		Cache:            queryCache,
		State:            a.refresh,
		Sink:             sink,
		SnapshotEnabled:  cfg.TelemetrySnapshotEnabled,
		SnapshotInterval: cfg.TelemetrySnapshotInterval,
		Logger:           logger,
	})

	handler := httpapi.NewHandler(httpapi.HandlerConfig{
		Queries:        a.queries,
		State:          a.refresh,
		Freshness:      a.freshness,
		Upstream:       usecase.NewUpstreamService(a.queries, a.upstreamSource(), nil, logger),
		StreamInterval: cfg.FreshnessStreamInterval,
		Logger:         logger,
	})
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminToken:         cfg.AdminToken,
	})

	a.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	if cfg.AdminToken == "" {
		logger.Warn("admin routes disabled", "reason", "APP_ADMIN_TOKEN is empty")
	}

	return a, nil
}

// Handler exposes the router, mostly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run starts the refresh loop, the snapshot logger and the HTTP server. It
// blocks until ctx is done or the server fails, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	var wg conc.WaitGroup
	wg.Go(func() { a.refresh.Run(loopCtx) })
	wg.Go(func() { a.freshness.Run(loopCtx) })
	wg.Go(func() {
		a.logger.Info("http server starting", "addr", a.cfg.HTTPAddr, "store_driver", a.cfg.StoreDriver)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	})

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
		a.logger.Error("http server failed", "error", runErr)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancelShutdown()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("graceful shutdown failed", "error", err)
		runErr = errors.Join(runErr, err)
	}
	cancel()
	wg.Wait()

	a.queries.Stop()
	a.cache.Close()
	a.closeDB()
	a.logger.Info("http server stopped")

	return runErr
}

func (a *App) openStore() (store.Store, error) {
	switch a.cfg.StoreDriver {
	case config.StorePostgres:
		db, err := openPostgres(a.cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		return store.NewPostgres(db), nil
	case config.StorePostgREST:
		return store.NewPostgREST(store.PostgRESTConfig{
			BaseURL: a.cfg.StoreRESTURL,
			APIKey:  a.cfg.StoreRESTKey,
			Timeout: a.cfg.StoreTimeout,
		}), nil
	default:
		a.logger.Warn("using in-memory store with a development seed", "driver", a.cfg.StoreDriver)
		return seedDevelopmentStore(time.Now()), nil
	}
}

func openPostgres(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open(
		"postgres",
		normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary, cfg.ServiceName),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

func (a *App) closeDB() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close postgres failed", "error", err)
	}
	a.db = nil
}

func (a *App) breaker(name string, cfg config.CircuitConfig) *resilience.CircuitBreaker {
	bcfg := a.circuitConfig(cfg)
	a.logger.Info("circuit breaker configured", append([]any{"breaker", name}, bcfg.LogFields()...)...)
	if !cfg.Enabled {
		return nil
	}
	return resilience.NewNamedCircuitBreaker(name, bcfg, a.logBreakerChange)
}

func (a *App) circuitConfig(cfg config.CircuitConfig) resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Enabled:          cfg.Enabled,
		FailureThreshold: cfg.FailureCount,
		OpenTimeout:      cfg.OpenTimeout,
		HalfOpenMaxReq:   cfg.HalfOpenMaxReq,
	}
}

func (a *App) logBreakerChange(name string, from, to resilience.CircuitState) {
	a.logger.Warn("circuit breaker state changed", "breaker", name, "from", string(from), "to", string(to))
}

// upstreamSource returns nil when the comparison panel is not configured, so
// the panel reports the dependency as unavailable.
func (a *App) upstreamSource() usecase.UpstreamSource {
	if a.cfg.FPLUpstreamBaseURL == "" {
		return nil
	}
	return fpl.NewClient(fpl.ClientConfig{
		BaseURL:           a.cfg.FPLUpstreamBaseURL,
		Timeout:           a.cfg.FPLUpstreamTimeout,
		MaxRetries:        a.cfg.FPLUpstreamMaxRetries,
		RequestsPerSecond: a.cfg.FPLUpstreamRPS,
		Logger:            a.logger,
		CircuitBreaker:    a.circuitConfig(a.cfg.FPLUpstreamCircuit),
	})
}

func (a *App) statsSource() usecase.StatsSource {
	if a.cfg.StatsAPIBaseURL == "" {
		return nil
	}
	return statsapi.NewClient(statsapi.ClientConfig{
		BaseURL:        a.cfg.StatsAPIBaseURL,
		Timeout:        a.cfg.StatsAPITimeout,
		Logger:         a.logger,
		CircuitBreaker: a.circuitConfig(a.cfg.StatsAPICircuit),
	})
}
