package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/fpl-companion/internal/platform/resilience"
)

// Guarded puts a circuit breaker in front of a driver. Only transient failures
// count against the breaker; a rejected call is itself transient.
type Guarded struct {
	next    Store
	breaker *resilience.CircuitBreaker
}

func NewGuarded(next Store, breaker *resilience.CircuitBreaker) *Guarded {
	return &Guarded{next: next, breaker: breaker}
}

func (g *Guarded) Select(ctx context.Context, q Query) ([]Row, error) {
	var rows []Row
	err := g.run(ctx, func(ctx context.Context) error {
		var err error
		rows, err = g.next.Select(ctx, q)
		return err
	})
	return rows, err
}

func (g *Guarded) Append(ctx context.Context, table string, rows []Row) error {
	return g.run(ctx, func(ctx context.Context) error {
		return g.next.Append(ctx, table, rows)
	})
}

func (g *Guarded) run(ctx context.Context, fn func(context.Context) error) error {
	if g.breaker == nil {
		return fn(ctx)
	}
	err := g.breaker.Execute(ctx, func(err error) bool { return !IsPermanent(err) }, fn)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return Transient(fmt.Errorf("store %s: %w", g.breaker.Name(), err))
	}
	return err
}
