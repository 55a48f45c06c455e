package clock

import (
	"sync/atomic"
	"time"
)

// NowFunc returns current wall time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Logical is a monotonically advancing counter used in place of wall time
// wherever ordering matters more than duration (page stamps, accounting).
type Logical struct {
	value atomic.Int64
}

// Now returns the current logical time without advancing it.
func (l *Logical) Now() int {
	return int(l.value.Load())
}

// Tick advances the clock by one unit and returns the new time.
func (l *Logical) Tick() int {
	return int(l.value.Add(1))
}

// Advance moves the clock forward by delta units; negative deltas are ignored.
func (l *Logical) Advance(delta int) int {
	if delta <= 0 {
		return l.Now()
	}
	return int(l.value.Add(int64(delta)))
}
