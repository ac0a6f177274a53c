package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// StateChangeFunc is invoked outside the breaker lock after every transition.
type StateChangeFunc func(name string, from, to CircuitState)

// CircuitBreaker guards one upstream dependency (a store backend or a remote
// API). Closed counts consecutive failures; open rejects until openTimeout
// passes; half-open admits halfOpenMaxReq probes and closes once they all
// succeed.
type CircuitBreaker struct {
	mu sync.Mutex

	name             string
	failureThreshold int
	openTimeout      time.Duration
	halfOpenMaxReq   int
	onStateChange    StateChangeFunc
	now              func() time.Time

	state     CircuitState
	failures  int
	openedAt  time.Time
	probes    int
	successes int
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: max(failureThreshold, 1),
		openTimeout:      durationOr(openTimeout, defaultOpenTimeout),
		halfOpenMaxReq:   max(halfOpenMaxReq, 1),
		state:            CircuitStateClosed,
		now:              time.Now,
	}
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// NewNamedCircuitBreaker builds a breaker from config and labels it for state-change reporting.
func NewNamedCircuitBreaker(name string, cfg CircuitBreakerConfig, onStateChange StateChangeFunc) *CircuitBreaker {
	cfg = cfg.Normalized()
	b := NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq)
	b.name = name
	b.onStateChange = onStateChange
	return b
}

func (b *CircuitBreaker) Name() string {
	return b.name
}

// update runs fn under the lock and reports a transition, if any, after
// releasing it.
func (b *CircuitBreaker) update(fn func() error) error {
	b.mu.Lock()
	from := b.state
	err := fn()
	to := b.state
	b.mu.Unlock()

	if from != to && b.onStateChange != nil {
		b.onStateChange(b.name, from, to)
	}
	return err
}

// Allow reserves a slot for one call. Every nil return must be followed by
// RecordSuccess or RecordFailure.
func (b *CircuitBreaker) Allow() error {
	return b.update(func() error {
		if b.state == CircuitStateOpen {
			if b.now().Sub(b.openedAt) < b.openTimeout {
				return ErrCircuitOpen
			}
			b.moveTo(CircuitStateHalfOpen)
		}
		if b.state == CircuitStateHalfOpen {
			if b.probes >= b.halfOpenMaxReq {
				return ErrCircuitOpen
			}
			b.probes++
		}
		return nil
	})
}

func (b *CircuitBreaker) RecordSuccess() {
	_ = b.update(func() error {
		switch b.state {
		case CircuitStateClosed:
			b.failures = 0
		case CircuitStateHalfOpen:
			b.releaseProbe()
			b.successes++
			if b.successes >= b.halfOpenMaxReq && b.probes == 0 {
				b.moveTo(CircuitStateClosed)
			}
		}
		return nil
	})
}

func (b *CircuitBreaker) RecordFailure() {
	_ = b.update(func() error {
		switch b.state {
		case CircuitStateClosed:
			b.failures++
			if b.failures >= b.failureThreshold {
				b.moveTo(CircuitStateOpen)
			}
		case CircuitStateHalfOpen:
			b.releaseProbe()
			b.moveTo(CircuitStateOpen)
		case CircuitStateOpen:
			b.openedAt = b.now()
		}
		return nil
	})
}

// Execute runs fn behind the breaker. Only errors for which countsAsFailure
// returns true trip the breaker; a nil classifier counts every error.
func (b *CircuitBreaker) Execute(ctx context.Context, countsAsFailure func(error) bool, fn func(context.Context) error) error {
	if err := b.Allow(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil && (countsAsFailure == nil || countsAsFailure(err)) {
		b.RecordFailure()
	} else {
		b.RecordSuccess()
	}
	return err
}

// State reports open breakers past their timeout as half-open, since the
// next Allow will move them there.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.openTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) releaseProbe() {
	if b.probes > 0 {
		b.probes--
	}
}

// moveTo resets the counters owned by the target state.
func (b *CircuitBreaker) moveTo(state CircuitState) {
	b.state = state
	b.probes = 0
	b.successes = 0
	switch state {
	case CircuitStateClosed:
		b.failures = 0
		b.openedAt = time.Time{}
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}
