package progress

import (
	"sync"
	"time"

	"github.com/viant/teller/internal/clock"
)

// Delta represents an incremental counter change emitted by the processor.
// The fields are signed and therefore can be either positive (increment) or
// negative (decrement).
type Delta struct {
	Total     int
	Running   int
	Completed int
	Failed    int
	Dropped   int
}

// Progress keeps aggregated transaction counters.  It is safe for concurrent
// use.
type Progress struct {
	StartedAt time.Time

	TotalTransactions     int
	RunningTransactions   int
	CompletedTransactions int
	FailedTransactions    int
	// DroppedNotifications counts outcomes that were never published.
	DroppedNotifications int

	mux      sync.Mutex
	onChange func(Snapshot)
}

// Snapshot is a read-only copy of the counters.
type Snapshot struct {
	StartedAt             time.Time
	TotalTransactions     int
	RunningTransactions   int
	CompletedTransactions int
	FailedTransactions    int
	DroppedNotifications  int
}

// Update applies the supplied delta.  If an onChange callback has been
// registered it is invoked with a snapshot outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.mux.Lock()
	p.TotalTransactions += d.Total
	p.RunningTransactions += d.Running
	p.CompletedTransactions += d.Completed
	p.FailedTransactions += d.Failed
	p.DroppedNotifications += d.Dropped
	snapshot := p.snapshot()
	cb := p.onChange
	p.mux.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.snapshot()
}

// OnChange registers a callback invoked after every Update.  Passing nil
// disables the callback.
func (p *Progress) OnChange(cb func(Snapshot)) {
	if p == nil {
		return
	}
	p.mux.Lock()
	p.onChange = cb
	p.mux.Unlock()
}

func (p *Progress) snapshot() Snapshot {
	return Snapshot{
		StartedAt:             p.StartedAt,
		TotalTransactions:     p.TotalTransactions,
		RunningTransactions:   p.RunningTransactions,
		CompletedTransactions: p.CompletedTransactions,
		FailedTransactions:    p.FailedTransactions,
		DroppedNotifications:  p.DroppedNotifications,
	}
}

// New creates a tracker stamped with the current time.
func New() *Progress {
	return &Progress{StartedAt: clock.Now()}
}
