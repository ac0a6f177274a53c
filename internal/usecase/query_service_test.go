package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/fpl-companion/internal/domain/cadence"
	"github.com/riskibarqy/fpl-companion/internal/domain/refreshstate"
	"github.com/riskibarqy/fpl-companion/internal/infrastructure/store"
)

func TestQueryService_CurrentGameweekAndFixtures(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService(t, seedStore())
	ctx := context.Background()

	current, err := svc.CurrentGameweek(ctx)
	if err != nil {
		t.Fatalf("current gameweek: %v", err)
	}
	if current.Data == nil || current.Data.ID != 4 {
		t.Fatalf("unexpected current gameweek: %+v", current.Data)
	}
	if current.UpdatedAt == nil || !current.UpdatedAt.Equal(testNow) {
		t.Fatalf("unexpected updated at: %v", current.UpdatedAt)
	}

	fixtures, err := svc.Fixtures(ctx, 0)
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	if fixtures.Key != FixturesKey(4) {
		t.Fatalf("unexpected key: got=%s want=%s", fixtures.Key, FixturesKey(4))
	}
	if len(fixtures.Data) != 2 {
		t.Fatalf("unexpected fixture count: got=%d want=2", len(fixtures.Data))
	}
}

func TestQueryService_FixturesDisabledWithoutCurrentGameweek(t *testing.T) {
	t.Parallel()

	mem := seedStore()
	mem.Seed("gameweeks", nil)
	svc := newTestQueryService(t, mem)

	res, err := svc.Fixtures(context.Background(), 0)
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	if res.Enabled {
		t.Fatalf("fixtures must stay disabled without a current gameweek")
	}
	if mem.Calls("fixtures") != 0 {
		t.Fatalf("disabled query must not select: calls=%d", mem.Calls("fixtures"))
	}
}

func TestQueryService_PermanentErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	mem := seedStore()
	mem.SetError("gameweeks", store.Permanent(errors.New(`column "is_current" does not exist`)))
	svc := newTestQueryService(t, mem)

	if _, err := svc.CurrentGameweek(context.Background()); !store.IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if _, err := svc.CurrentGameweek(context.Background()); err == nil {
		t.Fatalf("halted key must keep reporting its error")
	}
	if got := mem.Calls("gameweeks"); got != 1 {
		t.Fatalf("unexpected select count: got=%d want=1", got)
	}

	mem.SetError("gameweeks", nil)
	if !svc.Reset(KeyGameweekCurrent) {
		t.Fatalf("reset should report the halted key")
	}
	current, err := svc.CurrentGameweek(context.Background())
	if err != nil || current.Data == nil {
		t.Fatalf("expected data after reset: data=%v err=%v", current.Data, err)
	}
}

func TestQueryService_CadenceFollowsState(t *testing.T) {
	t.Parallel()

	signal := NewStateSignal(refreshstate.Idle)
	svc := newTestQueryService(t, seedStore(), func(cfg *QueryServiceConfig) { cfg.State = signal })

	idle := svc.options(cadence.KindFixtures, true)()
	signal.Store(refreshstate.LiveMatches)
	live := svc.options(cadence.KindFixtures, true)()

	if live.RefetchInterval >= idle.RefetchInterval {
		t.Fatalf("live fixtures must poll faster: live=%s idle=%s", live.RefetchInterval, idle.RefetchInterval)
	}
	if live.Retry != 1 {
		t.Fatalf("unexpected retry count: got=%d want=1", live.Retry)
	}
}

func TestQueryService_ManagerPicksAndStandings(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService(t, seedStore())
	ctx := context.Background()

	picks, err := svc.ManagerPicks(ctx, 99, 0)
	if err != nil {
		t.Fatalf("manager picks: %v", err)
	}
	if picks.Key != ManagerPicksKey(99, 4) || len(picks.Data) != 1 || !picks.Data[0].IsCaptain {
		t.Fatalf("unexpected picks: key=%s data=%+v", picks.Key, picks.Data)
	}

	standings, err := svc.LiveStandings(ctx, 5)
	if err != nil {
		t.Fatalf("live standings: %v", err)
	}
	if len(standings.Data) != 1 || standings.Data[0].GameweekPoints != 60 {
		t.Fatalf("unexpected standings: %+v", standings.Data)
	}

	if _, err := svc.ManagerPicks(ctx, 0, 4); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestQueryService_LatestPhasesFallsBackToPathLog(t *testing.T) {
	t.Parallel()

	mem := seedStore()
	mem.SetError("refresh_phase_log", store.Permanent(errors.New(`relation "refresh_phase_log" does not exist`)))
	svc := newTestQueryService(t, mem)

	res, err := svc.LatestPhases(context.Background())
	if err != nil {
		t.Fatalf("latest phases: %v", err)
	}
	if !res.Data.PathLevel {
		t.Fatalf("expected path level report")
	}
	if len(res.Data.Phases) != 3 {
		t.Fatalf("unexpected phase count: got=%d want=3", len(res.Data.Phases))
	}
	if row := res.Data.Phases["gw_players"]; row.DurationMS != 2400 || row.Path != "fast" {
		t.Fatalf("unexpected expanded row: %+v", row)
	}
}

func TestStatsKey_EqualFiltersShareKey(t *testing.T) {
	t.Parallel()

	a, err := StatsFilter{Gameweek: 4, Position: " mid "}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	b, err := StatsFilter{Gameweek: 4, Position: "MID", Range: RangeGameweek, SortDir: "desc", Page: 1}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if StatsKey(a) != StatsKey(b) {
		t.Fatalf("equal filters must share a key: %s != %s", StatsKey(a), StatsKey(b))
	}
}
