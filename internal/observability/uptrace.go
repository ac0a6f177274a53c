package observability

import (
	"context"
	"strings"

	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fpl-companion/internal/config"
	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
)

func noopShutdown(context.Context) error { return nil }

// processTags identify this deployment in both traces and profiles.
func processTags(cfg config.Config) map[string]string {
	return map[string]string{
		"env":          cfg.AppEnv,
		"service":      cfg.ServiceName,
		"version":      cfg.ServiceVersion,
		"store_driver": cfg.StoreDriver,
	}
}

// InitUptrace points the global OpenTelemetry providers at Uptrace. The
// returned func flushes pending spans and is a no-op when tracing is off.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("uptrace")

	dsn := strings.TrimSpace(cfg.UptraceDSN)
	switch {
	case !cfg.UptraceEnabled:
		logger.Info("tracing disabled", "reason", "UPTRACE_ENABLED=false")
		return noopShutdown, nil
	case dsn == "":
		logger.Info("tracing disabled", "reason", "UPTRACE_DSN empty")
		return noopShutdown, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(dsn),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(attribute.String("fpl.store_driver", cfg.StoreDriver)),
	)

	logger.Info("tracing enabled", "service_name", cfg.ServiceName, "environment", cfg.AppEnv, "store_driver", cfg.StoreDriver)
	return uptrace.Shutdown, nil
}
