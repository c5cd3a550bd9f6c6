// Package clock provides the time source used for operation timestamps.
package clock

import (
	"sync"
	"time"
)

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Sequence hands out strictly increasing timestamps. Two calls never return
// the same instant even when the underlying clock is coarse or frozen.
type Sequence struct {
	mux  sync.Mutex
	last time.Time
}

// Next returns Now, or one nanosecond after the previous value when Now has
// not advanced past it.
func (s *Sequence) Next() time.Time {
	now := Now()
	s.mux.Lock()
	defer s.mux.Unlock()
	if !now.After(s.last) {
		now = s.last.Add(time.Nanosecond)
	}
	s.last = now
	return now
}
