package resilience

import "time"

// Fallbacks applied to zero or negative breaker settings.
const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 15 * time.Second
	defaultHalfOpenMaxReq   = 2
)

// CircuitBreakerConfig tunes one breaker. A disabled config still normalizes,
// so callers can log the effective values either way.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: defaultFailureThreshold,
		OpenTimeout:      defaultOpenTimeout,
		HalfOpenMaxReq:   defaultHalfOpenMaxReq,
	}
}

// Normalized returns c with every unset threshold replaced by its fallback.
func (c CircuitBreakerConfig) Normalized() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaultFailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaultOpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaultHalfOpenMaxReq
	}
	return c
}

// LogFields renders the effective settings as logger key/value pairs.
func (c CircuitBreakerConfig) LogFields() []any {
	n := c.Normalized()
	return []any{
		"enabled", n.Enabled,
		"failure_threshold", n.FailureThreshold,
		"open_timeout", n.OpenTimeout.String(),
		"half_open_max_req", n.HalfOpenMaxReq,
	}
}
