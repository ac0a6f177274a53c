package fpl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
	"github.com/riskibarqy/fpl-companion/internal/platform/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{
		BaseURL:        srv.URL,
		MaxRetries:     retries,
		RetryBackoff:   time.Millisecond,
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Minute, HalfOpenMaxReq: 1},
	})
}

func TestClient_BootstrapStatic(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != bootstrapPath {
			t.Errorf("unexpected path: got=%s want=%s", r.URL.Path, bootstrapPath)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"events":[
				{"id":4,"name":"Gameweek 4","deadline_time":"2025-09-13T10:00:00Z","is_current":true,"finished":false,"data_checked":false},
				{"id":5,"name":"Gameweek 5","deadline_time":"2025-09-20T10:00:00Z","is_next":true,"release_time":null}
			],
			"teams":[{"id":1,"name":"Arsenal","short_name":"ARS"}],
			"elements":[{"id":1}]
		}`))
	}, 0)

	got, err := client.BootstrapStatic(context.Background())
	if err != nil {
		t.Fatalf("bootstrap static: %v", err)
	}
	if len(got.Gameweeks) != 2 {
		t.Fatalf("unexpected gameweek count: got=%d want=2", len(got.Gameweeks))
	}
	current := got.Gameweeks[0]
	if !current.IsCurrent || current.ID != 4 {
		t.Fatalf("unexpected current gameweek: %+v", current)
	}
	want := time.Date(2025, 9, 13, 10, 0, 0, 0, time.UTC)
	if !current.DeadlineTime.Equal(want) {
		t.Fatalf("unexpected deadline: got=%s want=%s", current.DeadlineTime, want)
	}
	if len(got.Teams) != 1 || got.Teams[0].ShortName != "ARS" {
		t.Fatalf("unexpected teams: %+v", got.Teams)
	}
}

func TestClient_FixturesSendsEventQuery(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("event"); got != "4" {
			t.Errorf("unexpected event query: got=%q want=4", got)
		}
		_, _ = w.Write([]byte(`[
			{"id":40,"event":4,"team_h":1,"team_a":2,"team_h_score":2,"team_a_score":1,"started":true,"finished":true,"finished_provisional":true,"minutes":90,"kickoff_time":"2025-09-13T14:00:00Z"},
			{"id":41,"event":4,"team_h":3,"team_a":1,"team_h_score":null,"team_a_score":null,"started":false,"finished":false,"finished_provisional":false,"minutes":0,"kickoff_time":"2025-09-13T16:30:00Z"}
		]`))
	}, 0)

	got, err := client.Fixtures(context.Background(), 4)
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected fixture count: got=%d want=2", len(got))
	}
	if got[0].HomeScore == nil || *got[0].HomeScore != 2 {
		t.Fatalf("unexpected home score: %+v", got[0].HomeScore)
	}
	if got[1].HomeScore != nil || got[1].Started {
		t.Fatalf("unexpected unstarted fixture: %+v", got[1])
	}
	if got[1].KickoffTime == nil {
		t.Fatalf("expected kickoff time")
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}, 1)

	got, err := client.Fixtures(context.Background(), 4)
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unexpected fixture count: got=%d want=0", len(got))
	}
	if calls.Load() != 2 {
		t.Fatalf("unexpected call count: got=%d want=2", calls.Load())
	}
}

func TestClient_PermanentStatusIsNotTransient(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}, 1)

	_, err := client.Fixtures(context.Background(), 4)
	if err == nil {
		t.Fatalf("expected error")
	}
	if IsTransient(err) {
		t.Fatalf("404 must not be transient: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("unexpected call count: got=%d want=1", calls.Load())
	}
}

func TestClient_BreakerOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 0)

	for i := 0; i < 2; i++ {
		if _, err := client.Fixtures(context.Background(), 4); !IsTransient(err) {
			t.Fatalf("expected transient error, got %v", err)
		}
	}

	_, err := client.Fixtures(context.Background(), 4)
	if !IsTransient(err) {
		t.Fatalf("expected open-circuit error to be transient, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("breaker should have rejected the third call: calls=%d", calls.Load())
	}
}

func TestClient_RateLimitWaitHonoursContext(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{
		BaseURL:           srv.URL,
		RequestsPerSecond: 0.001,
		Logger:            logging.NewNop(),
	})

	if _, err := client.Fixtures(context.Background(), 1); err != nil {
		t.Fatalf("first fixtures call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Fixtures(ctx, 2)
	if !IsTransient(err) {
		t.Fatalf("expected transient rate limit error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("unexpected call count: got=%d want=1", calls.Load())
	}
}
