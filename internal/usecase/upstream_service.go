package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fpl-companion/internal/domain/fixture"
	"github.com/riskibarqy/fpl-companion/internal/domain/gameweek"
	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
)

// UpstreamSource reads the official game API directly, bypassing the store.
type UpstreamSource interface {
	FetchGameweeks(ctx context.Context) ([]gameweek.Gameweek, error)
	FetchFixtures(ctx context.Context, event int) ([]fixture.Fixture, error)
}

// Mismatch is one field that differs between the store and upstream.
type Mismatch struct {
	Entity   string
	ID       int
	Field    string
	Store    string
	Upstream string
}

type UpstreamComparison struct {
	Gameweek   int
	CheckedAt  time.Time
	Mismatches []Mismatch
}

type UpstreamService struct {
	queries  *QueryService
	upstream UpstreamSource
	now      func() time.Time
	logger   *logging.Logger
}

func NewUpstreamService(queries *QueryService, upstream UpstreamSource, now func() time.Time, logger *logging.Logger) *UpstreamService {
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &UpstreamService{
		queries:  queries,
		upstream: upstream,
		now:      now,
		logger:   logger.Named("upstream"),
	}
}

// Compare checks the stored current gameweek and its fixtures against the
// upstream API. Upstream reads never go through the query cache.
func (s *UpstreamService) Compare(ctx context.Context) (UpstreamComparison, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UpstreamService.Compare")
	defer span.End()

	if s == nil || s.upstream == nil {
		return UpstreamComparison{}, fmt.Errorf("%w: upstream source is not configured", ErrDependencyUnavailable)
	}

	var (
		stored      *gameweek.Gameweek
		upstreamGWs []gameweek.Gameweek
	)
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		res, err := s.queries.CurrentGameweek(ctx)
		if err != nil {
			return fmt.Errorf("read stored gameweek: %w", err)
		}
		stored = res.Data
		return nil
	})
	p.Go(func(ctx context.Context) error {
		rows, err := s.upstream.FetchGameweeks(ctx)
		if err != nil {
			return fmt.Errorf("%w: fetch upstream gameweeks: %w", ErrDependencyUnavailable, err)
		}
		upstreamGWs = rows
		return nil
	})
	if err := p.Wait(); err != nil {
		return UpstreamComparison{}, err
	}

	out := UpstreamComparison{CheckedAt: s.now()}
	upstreamCurrent, hasUpstream := gameweek.Current(upstreamGWs)
	out.Mismatches = append(out.Mismatches, compareGameweek(stored, upstreamCurrent, hasUpstream)...)

	gw := upstreamCurrent.ID
	if stored != nil {
		gw = stored.ID
	}
	if gw <= 0 {
		return out, nil
	}
	out.Gameweek = gw

	var storedFixtures, upstreamFixtures []fixture.Fixture
	p = pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		res, err := s.queries.Fixtures(ctx, gw)
		if err != nil {
			return fmt.Errorf("read stored fixtures: %w", err)
		}
		storedFixtures = res.Data
		return nil
	})
	p.Go(func(ctx context.Context) error {
		rows, err := s.upstream.FetchFixtures(ctx, gw)
		if err != nil {
			return fmt.Errorf("%w: fetch upstream fixtures: %w", ErrDependencyUnavailable, err)
		}
		upstreamFixtures = rows
		return nil
	})
	if err := p.Wait(); err != nil {
		return UpstreamComparison{}, err
	}

	out.Mismatches = append(out.Mismatches, CompareFixtures(storedFixtures, upstreamFixtures)...)
	if len(out.Mismatches) > 0 {
		s.logger.WarnContext(ctx, "store differs from upstream", "gameweek", gw, "mismatches", len(out.Mismatches))
	}
	return out, nil
}

func compareGameweek(stored *gameweek.Gameweek, upstream gameweek.Gameweek, hasUpstream bool) []Mismatch {
	switch {
	case stored == nil && !hasUpstream:
		return nil
	case stored == nil:
		return []Mismatch{{Entity: "gameweek", ID: upstream.ID, Field: "is_current", Store: "missing", Upstream: "true"}}
	case !hasUpstream:
		return []Mismatch{{Entity: "gameweek", ID: stored.ID, Field: "is_current", Store: "true", Upstream: "missing"}}
	}

	var out []Mismatch
	add := func(field, a, b string) {
		if a != b {
			out = append(out, Mismatch{Entity: "gameweek", ID: upstream.ID, Field: field, Store: a, Upstream: b})
		}
	}
	add("id", strconv.Itoa(stored.ID), strconv.Itoa(upstream.ID))
	add("deadline_time", formatTime(stored.DeadlineTime), formatTime(upstream.DeadlineTime))
	add("finished", strconv.FormatBool(stored.Finished), strconv.FormatBool(upstream.Finished))
	add("data_checked", strconv.FormatBool(stored.DataChecked), strconv.FormatBool(upstream.DataChecked))
	return out
}

// CompareFixtures reports status and score differences per fixture id,
// ordered by id. Fixtures present on one side only are reported as missing.
func CompareFixtures(stored, upstream []fixture.Fixture) []Mismatch {
	byID := make(map[int]fixture.Fixture, len(stored))
	for _, f := range stored {
		byID[f.ID] = f
	}
	seen := make(map[int]struct{}, len(upstream))

	var out []Mismatch
	for _, u := range upstream {
		seen[u.ID] = struct{}{}
		st, ok := byID[u.ID]
		if !ok {
			out = append(out, Mismatch{Entity: "fixture", ID: u.ID, Field: "row", Store: "missing", Upstream: "present"})
			continue
		}
		add := func(field, a, b string) {
			if a != b {
				out = append(out, Mismatch{Entity: "fixture", ID: u.ID, Field: field, Store: a, Upstream: b})
			}
		}
		add("started", strconv.FormatBool(st.Started), strconv.FormatBool(u.Started))
		add("finished", strconv.FormatBool(st.Finished), strconv.FormatBool(u.Finished))
		add("finished_provisional", strconv.FormatBool(st.FinishedProvisional), strconv.FormatBool(u.FinishedProvisional))
		add("home_score", formatInt(st.HomeScore), formatInt(u.HomeScore))
		add("away_score", formatInt(st.AwayScore), formatInt(u.AwayScore))
		add("minutes", formatInt(st.Minutes), formatInt(u.Minutes))
	}
	for _, st := range stored {
		if _, ok := seen[st.ID]; !ok {
			out = append(out, Mismatch{Entity: "fixture", ID: st.ID, Field: "row", Store: "present", Upstream: "missing"})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func formatInt(v *int) string {
	if v == nil {
		return "null"
	}
	return strconv.Itoa(*v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "null"
	}
	return t.UTC().Format(time.RFC3339)
}
