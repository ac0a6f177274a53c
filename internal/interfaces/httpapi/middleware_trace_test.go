package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
)

func TestShouldTraceRequest_HealthPaths(t *testing.T) {
	paths := []string{"/healthz", "/health", "/livez", "/readyz", " /healthz "}
	for _, path := range paths {
		if shouldTraceRequest(path) {
			t.Fatalf("expected no tracing for path %q", path)
		}
	}
}

func TestShouldTraceRequest_NonHealthPaths(t *testing.T) {
	paths := []string{"/v1/refresh/state", "/v1/stats", "/", "/docs"}
	for _, path := range paths {
		if !shouldTraceRequest(path) {
			t.Fatalf("expected tracing for path %q", path)
		}
	}
}

func TestShouldTraceRequest_SkipsEventStreams(t *testing.T) {
	if shouldTraceRequest("/v1/refresh/freshness/stream") {
		t.Fatalf("expected no tracing for event stream")
	}
}

func TestRequireAdminToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		configured string
		provided   string
		want       int
	}{
		{name: "unconfigured", configured: "", provided: "x", want: http.StatusServiceUnavailable},
		{name: "missing", configured: "secret", provided: "", want: http.StatusUnauthorized},
		{name: "wrong", configured: "secret", provided: "guess", want: http.StatusUnauthorized},
		{name: "valid", configured: "secret", provided: "secret", want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/admin/cache/reset", nil)
			if tt.provided != "" {
				req.Header.Set("X-Admin-Token", tt.provided)
			}
			rec := httptest.NewRecorder()
			RequireAdminToken(tt.configured, next).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequestLogging_RequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequestLogging(logging.NewNop(), next)

	req := httptest.NewRequest(http.MethodGet, "/v1/refresh/state", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("unexpected echoed request id: %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/refresh/state", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Fatalf("expected generated uuid request id, got %q", got)
	}
}
