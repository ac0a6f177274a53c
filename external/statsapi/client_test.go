package statsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
	"github.com/riskibarqy/fpl-companion/internal/platform/resilience"
)

func TestClient_StatsEncodesQueryAndDecodesPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != statsPath {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if q.Get("gw_filter") != "last5" || q.Get("sort_by") != "total_points" || q.Get("page_size") != "50" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Has("search") {
			t.Errorf("empty search must be omitted: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{
			"players":[{"player_id":10,"web_name":"Saka","team_id":1,"position":3,"now_cost":100,"selected_by_percent":"31.4","minutes":450,"total_points":40,"effective_total_points":43,"bonus":5}],
			"team_goals_conceded":{"1":4},
			"total_count":1,"page":1,"page_size":50,
			"top_10_player_ids_by_field":{"total_points":[10]}
		}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{BaseURL: srv.URL, Logger: logging.NewNop()})
	page, err := client.Stats(context.Background(), Query{GWFilter: "last5", SortBy: "total_points", SortDir: "desc", PageSize: 50})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(page.Players) != 1 {
		t.Fatalf("unexpected player count: got=%d want=1", len(page.Players))
	}
	if page.TeamGoalsConceded[1] != 4 {
		t.Fatalf("unexpected team goals conceded: got=%d want=4", page.TeamGoalsConceded[1])
	}
	if got := page.Top10PlayerIDsByField["total_points"]; len(got) != 1 || got[0] != 10 {
		t.Fatalf("unexpected top10: %v", got)
	}

	agg := page.Players[0].Aggregate(1, 5)
	if agg.EffectiveTotalPoints != 43 {
		t.Fatalf("unexpected effective total: got=%d want=43", agg.EffectiveTotalPoints)
	}
	if agg.EffectiveBonus != 5 {
		t.Fatalf("effective bonus should fall back to bonus: got=%d want=5", agg.EffectiveBonus)
	}
	if agg.SelectedByPercent == nil || agg.SelectedByPercent.String() != "31.4" {
		t.Fatalf("unexpected ownership: %v", agg.SelectedByPercent)
	}
}

func TestClient_StatsClassifiesStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		status    int
		transient bool
	}{
		{name: "server error", status: http.StatusInternalServerError, transient: true},
		{name: "rate limited", status: http.StatusTooManyRequests, transient: true},
		{name: "bad request", status: http.StatusBadRequest, transient: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			t.Cleanup(srv.Close)

			client := NewClient(ClientConfig{
				BaseURL:        srv.URL,
				Logger:         logging.NewNop(),
				CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
			})
			_, err := client.Stats(context.Background(), Query{})
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := IsTransient(err); got != tc.transient {
				t.Fatalf("unexpected transient classification: got=%v want=%v err=%v", got, tc.transient, err)
			}
		})
	}
}
