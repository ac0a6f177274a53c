package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/fpl-companion/internal/config"
	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:                    config.EnvDev,
		ServiceName:               "fpl-companion",
		HTTPAddr:                  "127.0.0.1:0",
		ReadTimeout:               time.Second,
		WriteTimeout:              time.Second,
		CORSAllowedOrigins:        []string{"*"},
		StoreDriver:               config.StoreMemory,
		StoreCircuit:              config.CircuitConfig{Enabled: true, FailureCount: 5, OpenTimeout: time.Second, HalfOpenMaxReq: 1},
		CacheMaxEntries:           64,
		CacheWorkers:              2,
		CacheLeaseTTL:             -1,
		PriceWindowUTCOffset:      "-08:00",
		PriceWindowStart:          "17:30",
		PriceWindowEnd:            "17:36",
		RefreshEvalInterval:       time.Second,
		TelemetrySnapshotInterval: time.Second,
		FreshnessStreamInterval:   time.Second,
	}
}

func TestNew_ServesMemorySeed(t *testing.T) {
	a, err := New(testConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() {
		a.queries.Stop()
		a.cache.Close()
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/refresh/state", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/refresh/upstream", nil)
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected upstream status code: got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{name: "empty addr", mutate: func(c *config.Config) { c.HTTPAddr = "" }, want: "addr"},
		{name: "bad window", mutate: func(c *config.Config) { c.PriceWindowStart = "25:99" }, want: "price window"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			_, err := New(cfg, logging.NewNop())
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("unexpected error: got=%v want substring %q", err, tc.want)
			}
		})
	}
}

func TestSeedDevelopmentStore_HasCurrentGameweek(t *testing.T) {
	m := seedDevelopmentStore(time.Date(2026, 10, 3, 15, 0, 0, 0, time.UTC))

	current := 0
	for _, row := range m.Rows("gameweeks") {
		if row["is_current"] == true {
			current++
		}
	}
	if current != 1 {
		t.Fatalf("unexpected current gameweek count: got=%d want=1", current)
	}
}
