package statsapi

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

	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
	"github.com/riskibarqy/fpl-companion/internal/platform/resilience"
)

const (
	statsPath      = "/api/v1/stats"
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 16 << 20
)

var ErrTransient = crerr.New("stats api transient failure")

func IsTransient(err error) bool {
	return crerr.Is(err, ErrTransient) || crerr.Is(err, resilience.ErrCircuitOpen)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads precomputed stat pages from the backend REST endpoint.
type Client struct {
	httpClient     *http.Client
	baseURL        string
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

	breakerCfg := cfg.CircuitBreaker.Normalized()
	named := logger.Named("stats_api")
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		logger:     named,
		breaker: resilience.NewNamedCircuitBreaker("stats_api", breakerCfg, func(name string, from, to resilience.CircuitState) {
			named.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
		}),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Query mirrors the endpoint parameters. Empty fields are omitted.
type Query struct {
	GWFilter string
	Location string
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
	Position string
	Search   string
}

func (q Query) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("gw_filter", q.GWFilter)
	set("location", q.Location)
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	set("sort_by", q.SortBy)
	set("sort_dir", q.SortDir)
	set("position", q.Position)
	set("search", q.Search)
	return v
}

func (c *Client) Stats(ctx context.Context, q Query) (Page, error) {
	if c.baseURL == "" {
		return Page{}, fmt.Errorf("stats api base url is not configured")
	}
	fullURL := c.baseURL + statsPath
	if encoded := q.values().Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var raw []byte
		exec := func(ctx context.Context) error {
			var reqErr error
			raw, reqErr = c.get(ctx, fullURL)
			return reqErr
		}
		var err error
		if c.circuitEnabled {
			err = c.breaker.Execute(ctx, IsTransient, exec)
		} else {
			err = exec(ctx)
		}
		return raw, err
	})
	if err != nil {
		c.logger.WarnContext(ctx, "stats api request failed", "url", fullURL, "error", err)
		return Page{}, fmt.Errorf("fetch stats: %w", err)
	}

	var page Page
	if err := sonic.Unmarshal(out.([]byte), &page); err != nil {
		return Page{}, fmt.Errorf("decode stats payload: %w", err)
	}
	return page, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Mark(fmt.Errorf("send request: %w", err), ErrTransient)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, crerr.Mark(fmt.Errorf("read response body: %w", err), ErrTransient)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	statusErr := fmt.Errorf("stats api status=%d", resp.StatusCode)
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return nil, crerr.Mark(statusErr, ErrTransient)
	}
	return nil, statusErr
}
