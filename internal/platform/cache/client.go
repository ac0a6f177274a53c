package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/fpl-companion/internal/platform/logging"
)

var ErrClosed = errors.New("query cache is closed")

const (
	defaultMaxEntries = 512
	defaultWorkers    = 16
)

type Config struct {
	MaxEntries int
	Workers    int
	// IsPermanent classifies fetch errors. Unclassified errors are transient.
	IsPermanent func(error) bool
	Logger      *logging.Logger
	Now         func() time.Time
}

// Client is a keyed asynchronous result cache. Each entry holds the last good
// value, the last error and at most one in-flight fetch.
type Client struct {
	mu      sync.Mutex
	entries *lru.Cache[string, *entry]
	limit   int // configured cap
	max     int // current cap, above limit only while every entry is busy
	closed  bool

	pool        *ants.Pool
	baseCtx     context.Context
	cancel      context.CancelFunc
	isPermanent func(error) bool
	logger      *logging.Logger
	now         func() time.Time

	notify *notifier
}

type entry struct {
	key     string
	fetcher Fetcher
	optsFn  OptionsFunc

	data      any
	hasData   bool
	err       error
	errAt     time.Time
	updatedAt time.Time
	duration  time.Duration
	stale     bool
	halted    bool

	inflight       *flight
	lastFetchStart time.Time

	observers int
	stopPoll  chan struct{}
	wake      chan struct{}
	kick      bool
}

type flight struct {
	done chan struct{}
}

type fetchJob struct {
	e       *entry
	fl      *flight
	fetcher Fetcher
	retry   int
}

func New(cfg Config) (*Client, error) {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaultMaxEntries
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.IsPermanent == nil {
		cfg.IsPermanent = func(error) bool { return false }
	}

	entries, err := lru.New[string, *entry](cfg.MaxEntries)
	if err != nil {
		return nil, err
	}
	pool, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		entries:     entries,
		limit:       cfg.MaxEntries,
		max:         cfg.MaxEntries,
		pool:        pool,
		baseCtx:     ctx,
		cancel:      cancel,
		isPermanent: cfg.IsPermanent,
		logger:      cfg.Logger.Named("query_cache"),
		now:         cfg.Now,
		notify:      newNotifier(),
	}
	go c.notify.run()
	return c, nil
}

// Get returns the latest snapshot for key and schedules a fetch when the entry
// is absent or stale. It never blocks on IO.
func (c *Client) Get(key string, fetcher Fetcher, optsFn OptionsFunc) Snapshot {
	opts := resolve(optsFn)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Snapshot{Err: ErrClosed}
	}
	e := c.touchLocked(key, fetcher, optsFn)
	job := c.maybeFetchLocked(e, opts)
	snap := e.snapshot()
	c.mu.Unlock()

	c.dispatch(job)
	return snap
}

// Load behaves like Get but waits for the in-flight or newly scheduled fetch.
// Disabled and halted entries return their current snapshot immediately.
func (c *Client) Load(ctx context.Context, key string, fetcher Fetcher, optsFn OptionsFunc) (Snapshot, error) {
	opts := resolve(optsFn)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Snapshot{Err: ErrClosed}, ErrClosed
	}
	e := c.touchLocked(key, fetcher, optsFn)
	job := c.maybeFetchLocked(e, opts)
	fl := e.inflight
	if fl == nil {
		snap := e.snapshot()
		c.mu.Unlock()
		return snap, nil
	}
	c.mu.Unlock()

	c.dispatch(job)

	select {
	case <-fl.done:
	case <-ctx.Done():
		return c.peekOrEmpty(key), ctx.Err()
	}
	return c.peekOrEmpty(key), nil
}

// Observe registers an observer for key. While at least one observer exists
// the entry is polled at its RefetchInterval. The returned func unregisters.
func (c *Client) Observe(key string, fetcher Fetcher, optsFn OptionsFunc) func() {
	opts := resolve(optsFn)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return func() {}
	}
	e := c.touchLocked(key, fetcher, optsFn)
	e.observers++
	if e.observers == 1 {
		e.stopPoll = make(chan struct{})
		e.wake = make(chan struct{}, 1)
		go c.poll(e, e.stopPoll, e.wake)
	}
	job := c.maybeFetchLocked(e, opts)
	c.mu.Unlock()

	c.dispatch(job)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if e.observers == 0 {
				return
			}
			e.observers--
			if e.observers == 0 && e.stopPoll != nil {
				close(e.stopPoll)
				e.stopPoll = nil
				e.wake = nil
			}
			if e.observers == 0 {
				c.shrinkLocked("")
			}
		})
	}
}

// Subscribe registers a listener for every entry update.
func (c *Client) Subscribe(listener Listener) func() {
	return c.notify.add(listener)
}

// Invalidate marks every entry whose key starts with prefix as stale. Observed
// entries refetch right away; the rest refetch on their next read.
func (c *Client) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, key := range c.entries.Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		e, ok := c.entries.Peek(key)
		if !ok {
			continue
		}
		e.stale = true
		count++
		if e.observers > 0 {
			e.kick = true
			wakeUp(e.wake)
		}
	}
	return count
}

// Reset clears the error state of key, including a permanent halt, and marks it stale.
func (c *Client) Reset(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Peek(key)
	if !ok {
		return false
	}
	e.err = nil
	e.errAt = time.Time{}
	e.halted = false
	e.stale = true
	if e.observers > 0 {
		e.kick = true
		wakeUp(e.wake)
	}
	return true
}

// Retune wakes every poller so it re-reads its options immediately.
func (c *Client) Retune() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries.Values() {
		if e.observers > 0 {
			wakeUp(e.wake)
		}
	}
}

func (c *Client) Peek(key string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Peek(key)
	if !ok {
		return Snapshot{}, false
	}
	return e.snapshot(), true
}

// PeekPrefix returns snapshots for every key starting with prefix.
func (c *Client) PeekPrefix(prefix string) map[string]Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]Snapshot)
	for _, key := range c.entries.Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if e, ok := c.entries.Peek(key); ok {
			out[key] = e.snapshot()
		}
	}
	return out
}

func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Close stops every poller, drops all entries and releases the worker pool.
// Fetches already running finish but their results are discarded.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, e := range c.entries.Values() {
		if e.stopPoll != nil {
			close(e.stopPoll)
			e.stopPoll = nil
			e.wake = nil
		}
		e.observers = 0
	}
	c.entries.Purge()
	c.mu.Unlock()

	c.cancel()
	c.pool.Release()
	c.notify.close()
}

func (c *Client) peekOrEmpty(key string) Snapshot {
	snap, _ := c.Peek(key)
	return snap
}

func (c *Client) touchLocked(key string, fetcher Fetcher, optsFn OptionsFunc) *entry {
	if e, ok := c.entries.Get(key); ok {
		if fetcher != nil {
			e.fetcher = fetcher
		}
		if optsFn != nil {
			e.optsFn = optsFn
		}
		return e
	}

	e := &entry{key: key, fetcher: fetcher, optsFn: optsFn}
	c.makeRoomLocked()
	c.entries.Add(key, e)
	return e
}

// makeRoomLocked evicts the least recently used entry that is neither observed
// nor fetching. When every entry is busy the cap grows instead.
func (c *Client) makeRoomLocked() {
	if c.entries.Len() < c.max {
		return
	}
	for _, key := range c.entries.Keys() {
		e, ok := c.entries.Peek(key)
		if !ok {
			continue
		}
		if e.observers == 0 && e.inflight == nil {
			c.entries.Remove(key)
			return
		}
	}
	c.max++
	c.entries.Resize(c.max)
	c.logger.Warn("query cache grew past configured cap", "max_entries", c.max, "configured", c.limit)
}

// shrinkLocked walks a grown cap back towards the configured one, evicting
// idle entries least recently used first. keep is never evicted.
func (c *Client) shrinkLocked(keep string) {
	if c.closed || c.max <= c.limit {
		return
	}
	for _, key := range c.entries.Keys() {
		if c.entries.Len() <= c.limit {
			break
		}
		if key == keep {
			continue
		}
		if e, ok := c.entries.Peek(key); ok && e.observers == 0 && e.inflight == nil {
			c.entries.Remove(key)
		}
	}
	next := max(c.limit, c.entries.Len())
	if next == c.max {
		return
	}
	c.max = next
	c.entries.Resize(next)
	if next == c.limit {
		c.logger.Info("query cache back at configured cap", "max_entries", next)
	}
}

// Cap reports the current entry cap.
func (c *Client) Cap() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.max
}

func (c *Client) maybeFetchLocked(e *entry, opts Options) *fetchJob {
	if !opts.Enabled || e.halted || e.inflight != nil || e.fetcher == nil {
		return nil
	}
	if !e.isStale(c.now(), opts.StaleTTL) {
		return nil
	}
	return c.beginFetchLocked(e, opts)
}

func (c *Client) beginFetchLocked(e *entry, opts Options) *fetchJob {
	fl := &flight{done: make(chan struct{})}
	e.inflight = fl
	e.lastFetchStart = c.now()
	e.stale = false
	e.kick = false
	return &fetchJob{e: e, fl: fl, fetcher: e.fetcher, retry: opts.Retry}
}

func (c *Client) dispatch(job *fetchJob) {
	if job == nil {
		return
	}
	err := c.pool.Submit(func() { c.run(job) })
	if err == nil {
		return
	}
	if errors.Is(err, ants.ErrPoolOverload) {
		go c.run(job)
		return
	}
	c.complete(job, nil, ErrClosed, 0)
}

func (c *Client) run(job *fetchJob) {
	start := c.now()
	val, err := job.fetcher(c.baseCtx)
	if err != nil && job.retry > 0 && !c.isPermanent(err) && c.baseCtx.Err() == nil {
		c.logger.Warn("query fetch failed, retrying", "key", job.e.key, "attempt", 1, "error", err)
		val, err = job.fetcher(c.baseCtx)
	}
	c.complete(job, val, err, c.now().Sub(start))
}

func (c *Client) complete(job *fetchJob, val any, err error, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := job.e
	if e.inflight == job.fl {
		e.inflight = nil
	}
	defer close(job.fl.done)

	if c.closed {
		return
	}
	if e.observers == 0 {
		defer c.shrinkLocked(e.key)
	}

	now := c.now()
	e.duration = duration
	permanent := false
	if err != nil {
		permanent = c.isPermanent(err)
		e.err = err
		e.errAt = now
		if permanent {
			e.halted = true
			c.logger.Error("query fetch failed permanently, polling halted", "key", e.key, "error", err)
		} else {
			c.logger.Warn("query fetch failed", "key", e.key, "error", err, "has_data", e.hasData)
		}
	} else {
		e.data = val
		e.hasData = true
		e.err = nil
		e.errAt = time.Time{}
		e.updatedAt = now
	}

	c.notify.push(Event{
		Key:       e.key,
		UpdatedAt: e.updatedAt,
		At:        now,
		Duration:  duration,
		Err:       err,
		Permanent: permanent,
	})
}

func (e *entry) isStale(now time.Time, ttl time.Duration) bool {
	if e.stale {
		return true
	}
	last := e.updatedAt
	if e.errAt.After(last) {
		last = e.errAt
	}
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= ttl
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		Data:          e.data,
		HasData:       e.hasData,
		Err:           e.err,
		Loading:       e.inflight != nil,
		Halted:        e.halted,
		UpdatedAt:     e.updatedAt,
		ErrorAt:       e.errAt,
		FetchDuration: e.duration,
		Observers:     e.observers,
	}
}

func wakeUp(ch chan struct{}) {
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}
