package refreshstate

import (
	"testing"
	"time"

	"github.com/riskibarqy/fpl-companion/internal/domain/fixture"
	"github.com/riskibarqy/fpl-companion/internal/domain/gameweek"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestDerive(t *testing.T) {
	t.Parallel()

	// 12:00 UTC is 04:00 at UTC-08:00, well outside the price window.
	now := time.Date(2026, 10, 3, 12, 0, 0, 0, time.UTC)
	current := &gameweek.Gameweek{ID: 10, IsCurrent: true, DeadlineTime: now.Add(-48 * time.Hour)}
	window := DefaultWindow()

	tests := []struct {
		name     string
		input    Input
		expected State
	}{
		{
			name:     "no current gameweek",
			input:    Input{Now: now},
			expected: OutsideGameweek,
		},
		{
			name: "price window gated by current gameweek",
			input: Input{
				Now: time.Date(2026, 10, 4, 1, 32, 0, 0, time.UTC), // 17:32 at UTC-08:00
			},
			expected: OutsideGameweek,
		},
		{
			name: "price window beats live matches",
			input: Input{
				Current:  current,
				Fixtures: []fixture.Fixture{{ID: 1, Gameweek: 10, Started: true}},
				Now:      time.Date(2026, 10, 4, 1, 32, 0, 0, time.UTC),
			},
			expected: PriceWindow,
		},
		{
			name: "kickoff elapsed before started flag",
			input: Input{
				Current:  current,
				Fixtures: []fixture.Fixture{{ID: 1, Gameweek: 10, KickoffTime: ptrTime(now.Add(-10 * time.Second))}},
				Now:      now,
			},
			expected: LiveMatches,
		},
		{
			name: "started and not provisionally finished",
			input: Input{
				Current: current,
				Fixtures: []fixture.Fixture{
					{ID: 1, Gameweek: 10, Started: true, FinishedProvisional: true, Finished: true},
					{ID: 2, Gameweek: 10, Started: true},
				},
				Now: now,
			},
			expected: LiveMatches,
		},
		{
			name: "every fixture awaiting bonus",
			input: Input{
				Current: current,
				Fixtures: []fixture.Fixture{
					{ID: 1, Gameweek: 10, Started: true, FinishedProvisional: true, KickoffTime: ptrTime(now.Add(-2 * time.Hour))},
				},
				Now: now,
			},
			expected: BonusPending,
		},
		{
			name: "one fixture confirmed is not bonus pending",
			input: Input{
				Current: current,
				Fixtures: []fixture.Fixture{
					{ID: 1, Gameweek: 10, Started: true, FinishedProvisional: true},
					{ID: 2, Gameweek: 10, Started: true, FinishedProvisional: true, Finished: true},
				},
				Now: now,
			},
			expected: Idle,
		},
		{
			name:     "empty fixture set is not bonus pending",
			input:    Input{Current: current, Now: now},
			expected: Idle,
		},
		{
			name: "fixtures of other gameweeks ignored",
			input: Input{
				Current:  current,
				Fixtures: []fixture.Fixture{{ID: 9, Gameweek: 11, Started: true}},
				Now:      now,
			},
			expected: Idle,
		},
		{
			name: "deadline batch lower bound",
			input: Input{
				Current: &gameweek.Gameweek{ID: 10, IsCurrent: true, DeadlineTime: now.Add(-30 * time.Minute)},
				Now:     now,
			},
			expected: TransferDeadline,
		},
		{
			name: "deadline batch upper bound",
			input: Input{
				Current: &gameweek.Gameweek{ID: 10, IsCurrent: true, DeadlineTime: now.Add(-90 * time.Minute)},
				Now:     now,
			},
			expected: TransferDeadline,
		},
		{
			name: "too soon after deadline",
			input: Input{
				Current: &gameweek.Gameweek{ID: 10, IsCurrent: true, DeadlineTime: now.Add(-29 * time.Minute)},
				Now:     now,
			},
			expected: Idle,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Derive(tc.input, window)
			if got != tc.expected {
				t.Fatalf("unexpected state: got=%s want=%s", got, tc.expected)
			}
			if again := Derive(tc.input, window); again != got {
				t.Fatalf("derivation not deterministic: first=%s second=%s", got, again)
			}
		})
	}
}

func TestDerive_LiveToBonusPendingTransition(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 3, 12, 0, 0, 0, time.UTC)
	current := &gameweek.Gameweek{ID: 10, IsCurrent: true}
	m := NewMachine(DefaultWindow())

	fx := fixture.Fixture{ID: 1, Gameweek: 10, KickoffTime: ptrTime(now.Add(-10 * time.Second))}
	res, changed := m.Evaluate(Input{Current: current, Fixtures: []fixture.Fixture{fx}, Now: now})
	if res.State != LiveMatches || !changed {
		t.Fatalf("unexpected first evaluation: state=%s changed=%v", res.State, changed)
	}
	if res.Label != "Live matches" {
		t.Fatalf("unexpected label: %s", res.Label)
	}

	if _, changed := m.Evaluate(Input{Current: current, Fixtures: []fixture.Fixture{fx}, Now: now.Add(time.Second)}); changed {
		t.Fatalf("expected no republish without transition")
	}

	fx.Started = true
	fx.FinishedProvisional = true
	res, changed = m.Evaluate(Input{Current: current, Fixtures: []fixture.Fixture{fx}, Now: now.Add(2 * time.Hour)})
	if res.State != BonusPending || !changed {
		t.Fatalf("unexpected transition: state=%s changed=%v", res.State, changed)
	}
	if m.Current().State != BonusPending {
		t.Fatalf("unexpected current state: %s", m.Current().State)
	}
}

func TestWindow_Bounds(t *testing.T) {
	t.Parallel()

	w, err := NewWindow("-08:00", "", "17:30", "17:36")
	if err != nil {
		t.Fatalf("unexpected window error: %v", err)
	}

	cases := map[string]bool{
		"2026-10-04T01:29:59Z": false,
		"2026-10-04T01:30:00Z": true,
		"2026-10-04T01:36:59Z": true,
		"2026-10-04T01:37:00Z": false,
	}
	for raw, want := range cases {
		at, _ := time.Parse(time.RFC3339, raw)
		if got := w.Contains(at); got != want {
			t.Fatalf("unexpected contains for %s: got=%v want=%v", raw, got, want)
		}
	}
}

func TestNewWindow_ZoneOverridesOffset(t *testing.T) {
	t.Parallel()

	w, err := NewWindow("-08:00", "America/Los_Angeles", "", "")
	if err != nil {
		t.Fatalf("unexpected window error: %v", err)
	}
	// 00:32 UTC in October is 17:32 PDT (UTC-07:00) but 16:32 at a fixed -08:00.
	at := time.Date(2026, 10, 4, 0, 32, 0, 0, time.UTC)
	if !w.Contains(at) {
		t.Fatalf("expected zone-aware window to follow daylight saving")
	}
	if DefaultWindow().Contains(at) {
		t.Fatalf("expected fixed offset window to ignore daylight saving")
	}
}

func TestNewWindow_Invalid(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ offset, start, end string }{
		{"08:00", "", ""},
		{"-08:00", "25:00", ""},
		{"-08:00", "17:40", "17:30"},
	} {
		if _, err := NewWindow(tc.offset, "", tc.start, tc.end); err == nil {
			t.Fatalf("expected error for %+v", tc)
		}
	}
}
