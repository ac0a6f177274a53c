package fpl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/fpl-companion/internal/domain/fixture"
	"github.com/riskibarqy/fpl-companion/internal/domain/gameweek"
	"github.com/riskibarqy/fpl-companion/internal/domain/team"
	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
	"github.com/riskibarqy/fpl-companion/internal/platform/resilience"
)

const (
	bootstrapPath       = "/fpl/bootstrap-static/"
	fixturesPath        = "/fpl/fixtures/"
	defaultTimeout      = 15 * time.Second
	defaultRetryBackoff = time.Second
	maxBodyBytes        = 8 << 20
)

var ErrTransient = crerr.New("fpl upstream transient failure")

// IsTransient reports whether err is worth retrying later.
func IsTransient(err error) bool {
	return crerr.Is(err, ErrTransient) || crerr.Is(err, resilience.ErrCircuitOpen)
}

type ClientConfig struct {
	HTTPClient   *http.Client
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// RequestsPerSecond caps outgoing requests, retries included. Zero or
	// less disables the limit.
	RequestsPerSecond float64
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
}

// Client reads the same-origin proxied upstream game API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	retryBackoff   time.Duration
	limiter        *rate.Limiter
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	breakerCfg := cfg.CircuitBreaker.Normalized()
	named := logger.Named("fpl_upstream")

	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		limiter:      limiter,
		logger:       named,
		breaker: resilience.NewNamedCircuitBreaker("fpl_upstream", breakerCfg, func(name string, from, to resilience.CircuitState) {
			named.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
		}),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Bootstrap is the subset of bootstrap-static the companion compares.
type Bootstrap struct {
	Gameweeks []gameweek.Gameweek
	Teams     []team.Team
}

func (c *Client) BootstrapStatic(ctx context.Context) (Bootstrap, error) {
	var payload bootstrapEnvelope
	if err := c.doJSON(ctx, bootstrapPath, nil, &payload); err != nil {
		return Bootstrap{}, fmt.Errorf("fetch bootstrap-static: %w", err)
	}

	out := Bootstrap{
		Gameweeks: make([]gameweek.Gameweek, 0, len(payload.Events)),
		Teams:     make([]team.Team, 0, len(payload.Teams)),
	}
	for _, ev := range payload.Events {
		out.Gameweeks = append(out.Gameweeks, ev.toDomain())
	}
	for _, t := range payload.Teams {
		out.Teams = append(out.Teams, team.Team{ID: t.ID, ShortName: t.ShortName, Name: t.Name})
	}
	return out, nil
}

// Fixtures lists the fixtures of one gameweek. event <= 0 lists the season.
func (c *Client) Fixtures(ctx context.Context, event int) ([]fixture.Fixture, error) {
	query := url.Values{}
	if event > 0 {
		query.Set("event", strconv.Itoa(event))
	}

	var payload []fixtureItem
	if err := c.doJSON(ctx, fixturesPath, query, &payload); err != nil {
		return nil, fmt.Errorf("fetch fixtures event=%d: %w", event, err)
	}

	out := make([]fixture.Fixture, 0, len(payload))
	for _, item := range payload {
		out = append(out, item.toDomain())
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	if c.baseURL == "" {
		return fmt.Errorf("fpl upstream base url is not configured")
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var raw []byte
		exec := func(ctx context.Context) error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}
		if !c.circuitEnabled {
			return raw, exec(ctx)
		}
		if err := c.breaker.Execute(ctx, IsTransient, exec); err != nil {
			if crerr.Is(err, resilience.ErrCircuitOpen) {
				c.logger.WarnContext(ctx, "fpl upstream circuit breaker rejected request", "state", c.breaker.State())
			}
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode upstream payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, crerr.Mark(fmt.Errorf("wait for request slot: %w", err), ErrTransient)
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Mark(fmt.Errorf("send request: %w", err), ErrTransient)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Mark(fmt.Errorf("read response body: %w", readErr), ErrTransient)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Mark(fmt.Errorf("upstream status=%d body=%s", resp.StatusCode, abbreviateBody(raw)), ErrTransient)
			default:
				return nil, fmt.Errorf("upstream status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, crerr.Mark(ctx.Err(), ErrTransient)
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "fpl upstream request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}
