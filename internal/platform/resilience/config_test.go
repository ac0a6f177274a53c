package resilience

import (
	"testing"
	"time"
)

func TestCircuitBreakerConfig_NormalizedFillsUnsetValues(t *testing.T) {
	got := CircuitBreakerConfig{Enabled: true, FailureThreshold: 0, OpenTimeout: -time.Second, HalfOpenMaxReq: 3}.Normalized()

	if got.FailureThreshold != defaultFailureThreshold {
		t.Fatalf("unexpected failure threshold: got=%d want=%d", got.FailureThreshold, defaultFailureThreshold)
	}
	if got.OpenTimeout != defaultOpenTimeout {
		t.Fatalf("unexpected open timeout: got=%s want=%s", got.OpenTimeout, defaultOpenTimeout)
	}
	if got.HalfOpenMaxReq != 3 {
		t.Fatalf("explicit half-open limit overwritten: got=%d", got.HalfOpenMaxReq)
	}
}

func TestCircuitBreakerConfig_LogFieldsUseEffectiveValues(t *testing.T) {
	fields := CircuitBreakerConfig{}.LogFields()
	if len(fields)%2 != 0 {
		t.Fatalf("expected key/value pairs, got %d items", len(fields))
	}

	byKey := map[string]any{}
	for i := 0; i < len(fields); i += 2 {
		byKey[fields[i].(string)] = fields[i+1]
	}
	if byKey["enabled"] != false {
		t.Fatalf("unexpected enabled: %v", byKey["enabled"])
	}
	if byKey["failure_threshold"] != defaultFailureThreshold {
		t.Fatalf("unexpected failure threshold: %v", byKey["failure_threshold"])
	}
	if byKey["open_timeout"] != defaultOpenTimeout.String() {
		t.Fatalf("unexpected open timeout: %v", byKey["open_timeout"])
	}
}
