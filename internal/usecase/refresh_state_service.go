package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/fpl-companion/internal/domain/refreshstate"
	"github.com/riskibarqy/fpl-companion/internal/platform/cache"
	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
)

const defaultEvaluateInterval = 10 * time.Second

type RefreshStateConfig struct {
	Queries *QueryService
	Cache   *cache.Client
	Signal  *StateSignal
	Window  refreshstate.Window
	// Interval is the clock tick between evaluations. Cache updates of the
	// gameweek and fixture keys trigger an evaluation as well.
	Interval time.Duration
	Now      func() time.Time
	Logger   *logging.Logger
}

// RefreshStateService derives the refresh state from cached gameweek and
// fixture data and publishes transitions to the cadence layer.
type RefreshStateService struct {
	queries  *QueryService
	cache    *cache.Client
	signal   *StateSignal
	machine  *refreshstate.Machine
	interval time.Duration
	now      func() time.Time
	logger   *logging.Logger
}

func NewRefreshStateService(cfg RefreshStateConfig) *RefreshStateService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultEvaluateInterval
	}
	signal := cfg.Signal
	if signal == nil {
		signal = NewStateSignal(refreshstate.Idle)
	}
	return &RefreshStateService{
		queries:  cfg.Queries,
		cache:    cfg.Cache,
		signal:   signal,
		machine:  refreshstate.NewMachine(cfg.Window),
		interval: interval,
		now:      now,
		logger:   logger.Named("refresh_state"),
	}
}

func (s *RefreshStateService) Current() refreshstate.Result {
	return s.machine.Current()
}

// Evaluate re-derives the state. When the current gameweek cannot be read the
// state falls back to idle instead of keeping a stale live cadence.
func (s *RefreshStateService) Evaluate(ctx context.Context) refreshstate.Result {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshStateService.Evaluate")
	defer span.End()

	current, err := s.queries.CurrentGameweek(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "current gameweek unavailable, forcing idle", "error", err)
		res, changed := s.machine.Force(refreshstate.Idle)
		s.publish(ctx, res, changed)
		return res
	}

	in := refreshstate.Input{Current: current.Data, Now: s.now()}
	gw := 0
	if current.Data != nil {
		gw = current.Data.ID
	}
	s.queries.WatchCore(gw)

	if gw > 0 {
		fixtures, err := s.queries.Fixtures(ctx, gw)
		if err != nil {
			s.logger.WarnContext(ctx, "current fixtures unavailable", "gameweek", gw, "error", err)
		}
		in.Fixtures = fixtures.Data
	}

	res, changed := s.machine.Evaluate(in)
	s.publish(ctx, res, changed)
	return res
}

func (s *RefreshStateService) publish(ctx context.Context, res refreshstate.Result, changed bool) {
	if !changed {
		return
	}
	from := s.signal.State()
	s.signal.Store(res.State)
	s.cache.Retune()
	s.logger.InfoContext(ctx, "refresh state changed", "from", string(from), "to", string(res.State))
}

// Run evaluates on every tick and whenever a gameweek or fixture query
// completes. It returns when ctx is done.
func (s *RefreshStateService) Run(ctx context.Context) {
	trigger := make(chan struct{}, 1)
	unsubscribe := s.cache.Subscribe(func(ev cache.Event) {
		if !isStateInputKey(ev.Key) {
			return
		}
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Evaluate(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-trigger:
		}
		s.Evaluate(ctx)
	}
}

func isStateInputKey(key string) bool {
	return key == KeyGameweekCurrent || strings.HasPrefix(key, PrefixFixtures)
}
