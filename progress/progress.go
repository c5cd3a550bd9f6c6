package progress

import (
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the scheduler.
// The fields are signed and therefore can be either positive or negative.
type Delta struct {
	Total     int
	Pending   int
	Executing int
	Completed int
	Failed    int
}

// Add returns the field-wise sum of d and other.
func (d Delta) Add(other Delta) Delta {
	return Delta{
		Total:     d.Total + other.Total,
		Pending:   d.Pending + other.Pending,
		Executing: d.Executing + other.Executing,
		Completed: d.Completed + other.Completed,
		Failed:    d.Failed + other.Failed,
	}
}

// Negate returns -d.
func (d Delta) Negate() Delta {
	return Delta{
		Total:     -d.Total,
		Pending:   -d.Pending,
		Executing: -d.Executing,
		Completed: -d.Completed,
		Failed:    -d.Failed,
	}
}

// IsZero reports whether d changes nothing.
func (d Delta) IsZero() bool {
	return d == Delta{}
}

// Progress keeps operation counters. Failed counts completed operations whose
// latest outcome was unsuccessful and is a subset of Completed. It is safe for
// concurrent use.
type Progress struct {
	StartedAt time.Time

	TotalOperations     int
	PendingOperations   int
	ExecutingOperations int
	CompletedOperations int
	FailedOperations    int

	// Activations counts every start, including re-runs.
	Activations int

	sync.Mutex
	onChange func(Progress)
}

// New creates a tracker; onChange may be nil.
func New(onChange func(Progress)) *Progress {
	return &Progress{StartedAt: time.Now(), onChange: onChange}
}

// Update applies the supplied delta. If an onChange callback has been
// registered it is invoked with a copy outside the critical section.
func (p *Progress) Update(d Delta) {
	p.apply(d, false)
}

// Started applies d and counts one more activation.
func (p *Progress) Started(d Delta) {
	p.apply(d, true)
}

func (p *Progress) apply(d Delta, activation bool) {
	if p == nil || (d.IsZero() && !activation) {
		return
	}
	p.Lock()
	p.TotalOperations += d.Total
	p.PendingOperations += d.Pending
	p.ExecutingOperations += d.Executing
	p.CompletedOperations += d.Completed
	p.FailedOperations += d.Failed
	if activation {
		p.Activations++
	}
	snapshot := p.copy()
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copy()
}

// OnChange registers a callback invoked after every Update. Passing nil
// disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

func (p *Progress) copy() Progress {
	return Progress{
		StartedAt:           p.StartedAt,
		TotalOperations:     p.TotalOperations,
		PendingOperations:   p.PendingOperations,
		ExecutingOperations: p.ExecutingOperations,
		CompletedOperations: p.CompletedOperations,
		FailedOperations:    p.FailedOperations,
		Activations:         p.Activations,
	}
}
