package cache

import (
	"context"
	"time"
)

// Options control freshness and polling for one entry.
type Options struct {
	// StaleTTL is how long a successful result is served without refetching.
	StaleTTL time.Duration
	// RefetchInterval enables background polling while the key is observed. Zero disables polling.
	RefetchInterval time.Duration
	// Enabled=false suppresses fetches; existing data stays readable.
	Enabled bool
	// Retry is the number of in-band retries for transient errors (0 or 1).
	Retry int
}

// OptionsFunc is resolved on every read and every poll tick, so callers can vary
// cadence without re-registering. It must not call back into the Client.
type OptionsFunc func() Options

// Static wraps fixed options.
func Static(opts Options) OptionsFunc {
	return func() Options { return opts }
}

// Fetcher loads the value for one key.
type Fetcher func(ctx context.Context) (any, error)

// Snapshot is a read-only view of an entry.
type Snapshot struct {
	Data          any
	HasData       bool
	Err           error
	Loading       bool
	Halted        bool
	UpdatedAt     time.Time
	ErrorAt       time.Time
	FetchDuration time.Duration
	Observers     int
}

// Event is published after every completed fetch, in completion order.
type Event struct {
	Key       string
	UpdatedAt time.Time
	At        time.Time
	Duration  time.Duration
	Err       error
	Permanent bool
}

type Listener func(Event)

func normalizeOptions(opts Options) Options {
	if opts.StaleTTL < 0 {
		opts.StaleTTL = 0
	}
	if opts.RefetchInterval < 0 {
		opts.RefetchInterval = 0
	}
	if opts.Retry < 0 {
		opts.Retry = 0
	}
	if opts.Retry > 1 {
		opts.Retry = 1
	}
	return opts
}

func resolve(fn OptionsFunc) Options {
	if fn == nil {
		return Options{Enabled: true}
	}
	return normalizeOptions(fn())
}
