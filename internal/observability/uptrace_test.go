package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/fpl-companion/internal/config"
	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{name: "flag off", cfg: config.Config{UptraceEnabled: false, ServiceName: "fpl-companion", AppEnv: config.EnvDev}},
		{name: "dsn empty", cfg: config.Config{UptraceEnabled: true, UptraceDSN: "  ", ServiceName: "fpl-companion", AppEnv: config.EnvDev}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := InitUptrace(tt.cfg, logging.NewNop())
			if err != nil {
				t.Fatalf("init uptrace: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown uptrace: %v", err)
			}
		})
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestStartPprofServer_Disabled(t *testing.T) {
	srv, err := StartPprofServer(config.Config{PprofEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("start pprof: %v", err)
	}
	if srv != nil {
		t.Fatalf("expected no server when disabled")
	}
	if err := StopPprofServer(srv, logging.NewNop(), 0); err != nil {
		t.Fatalf("stop nil pprof server: %v", err)
	}
}

func TestProcessTags_IncludeStoreDriver(t *testing.T) {
	tags := processTags(config.Config{AppEnv: config.EnvProd, ServiceName: "fpl-companion", ServiceVersion: "1.4.0", StoreDriver: config.StorePostgres})
	if tags["store_driver"] != config.StorePostgres || tags["env"] != config.EnvProd || tags["version"] != "1.4.0" {
		t.Fatalf("unexpected tags: %+v", tags)
	}
}
