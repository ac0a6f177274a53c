package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
	"github.com/riskibarqy/fpl-companion/internal/usecase"
)

const defaultStreamInterval = time.Second

type HandlerConfig struct {
	Queries   *usecase.QueryService
	State     usecase.StateReporter
	Freshness *usecase.FreshnessService
	// Upstream is optional; the comparison route reports it as unavailable when nil.
	Upstream       *usecase.UpstreamService
	StreamInterval time.Duration
	Logger         *logging.Logger
}

type Handler struct {
	queries        *usecase.QueryService
	state          usecase.StateReporter
	freshness      *usecase.FreshnessService
	upstream       *usecase.UpstreamService
	streamInterval time.Duration
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	interval := cfg.StreamInterval
	if interval <= 0 {
		interval = defaultStreamInterval
	}

	return &Handler{
		queries:        cfg.Queries,
		state:          cfg.State,
		freshness:      cfg.Freshness,
		upstream:       cfg.Upstream,
		streamInterval: interval,
		logger:         logger.Named("handler"),
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// pathID parses a positive path segment.
func pathID(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}

// optionalInt parses a query or path value; empty returns 0.
func optionalInt(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}

func optionalBool(raw, name string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", usecase.ErrInvalidInput, name)
	}
	return v, nil
}
