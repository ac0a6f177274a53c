package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/fpl-companion/internal/domain/refreshlog"
	"github.com/riskibarqy/fpl-companion/internal/domain/refreshstate"
	"github.com/riskibarqy/fpl-companion/internal/platform/cache"
	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
)

const (
	defaultSnapshotInterval = 15 * time.Second
	maxBufferedDurations    = 1024
)

// sourceQueryPrefixes maps each backend phase to the query families it feeds.
var sourceQueryPrefixes = map[refreshlog.Source][]string{
	refreshlog.SourceGameweeks:     {KeyGameweekCurrent, KeyGameweekNext},
	refreshlog.SourceFixtures:      {PrefixFixtures},
	refreshlog.SourceGWPlayers:     {prefixStatsRows, PrefixPlayerRange},
	refreshlog.SourceLiveStandings: {PrefixStandingsLive},
	refreshlog.SourceManagerPoints: {PrefixManagerPicks},
	refreshlog.SourceMVs:           {PrefixStats, PrefixTop10, PrefixCompareRanks},
}

// SourceOfKey returns the phase source whose data backs key.
func SourceOfKey(key string) (refreshlog.Source, bool) {
	for _, source := range refreshlog.Sources() {
		for _, prefix := range sourceQueryPrefixes[source] {
			if strings.HasPrefix(key, prefix) {
				return source, true
			}
		}
	}
	return "", false
}

// StateReporter exposes the last published refresh state with its label.
type StateReporter interface {
	Current() refreshstate.Result
}

// FreshnessRow compares backend and frontend freshness for one source.
type FreshnessRow struct {
	Source        refreshlog.Source
	Path          refreshlog.Path
	BackendAt     *time.Time
	SinceBackend  *time.Duration
	FrontendAt    *time.Time
	SinceFrontend *time.Duration
	DurationMS    *int
	QueryPrefixes []string
}

type FreshnessReport struct {
	GeneratedAt time.Time
	State       refreshstate.Result
	PathLevel   bool
	Rows        []FreshnessRow
	LatestBatch *refreshlog.DeadlineBatchRun
	// Error describes why backend times are missing, when they are.
	Error string
}

type FreshnessConfig struct {
	Queries          *QueryService
	Cache            *cache.Client
	State            StateReporter
	Sink             refreshlog.Sink
	SnapshotEnabled  bool
	SnapshotInterval time.Duration
	Now              func() time.Time
	Logger           *logging.Logger
}

type FreshnessService struct {
	queries          *QueryService
	cache            *cache.Client
	state            StateReporter
	sink             refreshlog.Sink
	snapshotEnabled  bool
	snapshotInterval time.Duration
	now              func() time.Time
	logger           *logging.Logger

	mu        sync.Mutex
	durations []refreshlog.FrontendDurationRow
}

func NewFreshnessService(cfg FreshnessConfig) *FreshnessService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	interval := cfg.SnapshotInterval
	if interval <= 0 {
		interval = defaultSnapshotInterval
	}
	return &FreshnessService{
		queries:          cfg.Queries,
		cache:            cfg.Cache,
		state:            cfg.State,
		sink:             cfg.Sink,
		snapshotEnabled:  cfg.SnapshotEnabled && cfg.Sink != nil,
		snapshotInterval: interval,
		now:              now,
		logger:           logger.Named("freshness"),
	}
}

// Report builds one row per declared source. Backend times come from the
// phase log, or from the path log when the phase log is missing; frontend
// times are the newest cache update among the source's query families.
func (s *FreshnessService) Report(ctx context.Context) FreshnessReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.FreshnessService.Report")
	defer span.End()

	var (
		phases   Result[PhaseReport]
		phaseErr error
		batch    Result[*refreshlog.DeadlineBatchRun]
		batchErr error
	)
	var wg conc.WaitGroup
	wg.Go(func() { phases, phaseErr = s.queries.LatestPhases(ctx) })
	wg.Go(func() { batch, batchErr = s.queries.LatestDeadlineBatch(ctx) })
	wg.Wait()

	report := FreshnessReport{
		GeneratedAt: s.now(),
		PathLevel:   phases.Data.PathLevel,
		LatestBatch: batch.Data,
	}
	if s.state != nil {
		report.State = s.state.Current()
	}
	switch {
	case phaseErr != nil:
		report.Error = phaseErr.Error()
	case phases.Error != "":
		report.Error = phases.Error
	}
	if batchErr != nil {
		s.logger.WarnContext(ctx, "load latest deadline batch failed", "error", batchErr)
	}

	report.Rows = BuildFreshnessRows(phases.Data.Phases, s.frontendTimes(), report.GeneratedAt)
	return report
}

func (s *FreshnessService) frontendTimes() map[refreshlog.Source]time.Time {
	out := make(map[refreshlog.Source]time.Time, len(sourceQueryPrefixes))
	for source, prefixes := range sourceQueryPrefixes {
		for _, prefix := range prefixes {
			for _, snap := range s.cache.PeekPrefix(prefix) {
				if snap.UpdatedAt.After(out[source]) {
					out[source] = snap.UpdatedAt
				}
			}
		}
	}
	return out
}

// BuildFreshnessRows renders the report rows at now, in declared source order.
func BuildFreshnessRows(phases map[refreshlog.Source]refreshlog.PhaseLogRow, frontend map[refreshlog.Source]time.Time, now time.Time) []FreshnessRow {
	rows := make([]FreshnessRow, 0, len(refreshlog.Sources()))
	for _, source := range refreshlog.Sources() {
		row := FreshnessRow{
			Source:        source,
			Path:          refreshlog.PathOf(source),
			QueryPrefixes: append([]string(nil), sourceQueryPrefixes[source]...),
		}
		if phase, ok := phases[source]; ok && !phase.OccurredAt.IsZero() {
			at := phase.OccurredAt
			since := now.Sub(at)
			duration := phase.DurationMS
			row.BackendAt = &at
			row.SinceBackend = &since
			row.DurationMS = &duration
			if phase.Path != "" {
				row.Path = phase.Path
			}
		}
		if at, ok := frontend[source]; ok && !at.IsZero() {
			since := now.Sub(at)
			row.FrontendAt = &at
			row.SinceFrontend = &since
		}
		rows = append(rows, row)
	}
	return rows
}

// Watch calls fn with a fresh report every interval until ctx is done. The
// first report is sent immediately.
func (s *FreshnessService) Watch(ctx context.Context, interval time.Duration, fn func(FreshnessReport) error) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := fn(s.Report(ctx)); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Run appends a snapshot of every row and the buffered frontend fetch
// durations each interval. It returns when ctx is done.
func (s *FreshnessService) Run(ctx context.Context) {
	if !s.snapshotEnabled {
		s.logger.Debug("snapshot logging disabled")
		return
	}

	unsubscribe := s.cache.Subscribe(s.recordDuration)
	defer unsubscribe()

	ticker := time.NewTicker(s.snapshotInterval)
	defer ticker.Stop()

	s.logger.Info("snapshot logging started", "interval", s.snapshotInterval.String())
	for {
		select {
		case <-ctx.Done():
			s.flush(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			s.flush(ctx)
		}
	}
}

func (s *FreshnessService) recordDuration(ev cache.Event) {
	if ev.Err != nil {
		return
	}
	source, ok := SourceOfKey(ev.Key)
	if !ok {
		return
	}

	state := refreshstate.Idle
	if s.state != nil {
		state = s.state.Current().State
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.durations) >= maxBufferedDurations {
		s.durations = s.durations[1:]
	}
	s.durations = append(s.durations, refreshlog.FrontendDurationRow{
		Source:     source,
		State:      string(state),
		QueryKey:   ev.Key,
		DurationMS: ev.Duration.Milliseconds(),
		RecordedAt: ev.At,
	})
}

func (s *FreshnessService) flush(ctx context.Context) {
	report := s.Report(ctx)

	snapshots := make([]refreshlog.SnapshotRow, 0, len(report.Rows))
	for _, row := range report.Rows {
		snapshots = append(snapshots, refreshlog.SnapshotRow{
			Source:           row.Source,
			State:            string(report.State.State),
			SinceBackendSec:  seconds(row.SinceBackend),
			SinceFrontendSec: seconds(row.SinceFrontend),
			RecordedAt:       report.GeneratedAt,
		})
	}
	if err := s.sink.AppendSnapshots(ctx, snapshots); err != nil {
		s.logger.WarnContext(ctx, "append refresh snapshots failed", "rows", len(snapshots), "error", err)
	}

	s.mu.Lock()
	durations := s.durations
	s.durations = nil
	s.mu.Unlock()

	if err := s.sink.AppendFrontendDurations(ctx, durations); err != nil {
		s.logger.WarnContext(ctx, "append frontend durations failed", "rows", len(durations), "error", err)
	}
}

func seconds(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	v := d.Seconds()
	return &v
}
