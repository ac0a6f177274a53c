package usecase

import (
	"sync/atomic"

	"github.com/riskibarqy/fpl-companion/internal/domain/refreshstate"
)

// StateSignal is the read-only view of the published refresh state. Cache
// option funcs read it on every tick, so it must stay lock-free.
type StateSignal struct {
	v atomic.Value
}

func NewStateSignal(initial refreshstate.State) *StateSignal {
	s := &StateSignal{}
	s.v.Store(initial)
	return s
}

func (s *StateSignal) State() refreshstate.State {
	if st, ok := s.v.Load().(refreshstate.State); ok {
		return st
	}
	return refreshstate.Idle
}

func (s *StateSignal) Store(st refreshstate.State) {
	s.v.Store(st)
}
