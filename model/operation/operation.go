package operation

import (
	"time"
)

// NormalPriority is the default priority.
const NormalPriority = 0

// Operation is a named unit of work with dependencies and a priority.
//
// Name, Dependencies, Priority and Kind are fixed once the operation is
// registered. The execution state is owned by the scheduler: the mutating
// methods below must only be called while holding the scheduler's lock.
type Operation struct {
	Name         string
	Dependencies []string
	Priority     int
	Kind         Kind

	body           Body
	state          State
	success        bool
	lastExecutedAt time.Time
	startedAt      time.Time
	activation     uint64
}

// New creates a pending operation. Duplicate dependency names are dropped.
func New(name string, dependencies []string, priority int, body Body) *Operation {
	return &Operation{
		Name:         name,
		Dependencies: dedupe(dependencies),
		Priority:     priority,
		body:         body,
	}
}

// NewFunc creates a normal priority operation running fn and reporting success.
func NewFunc(name string, dependencies []string, fn func()) *Operation {
	return New(name, dependencies, NormalPriority, Func(fn))
}

// Body returns the operation body.
func (o *Operation) Body() Body {
	return o.body
}

// State returns the current state.
func (o *Operation) State() State {
	return o.state
}

// IsCompleted reports whether done was reported for the latest activation.
func (o *Operation) IsCompleted() bool {
	return o.state == StateCompleted
}

// IsExecuting reports whether an activation is in flight.
func (o *Operation) IsExecuting() bool {
	return o.state == StateExecuting
}

// Success returns the flag of the latest completion.
func (o *Operation) Success() bool {
	return o.success
}

// LastExecutedAt returns the time of the latest completion, zero if none.
func (o *Operation) LastExecutedAt() time.Time {
	return o.lastExecutedAt
}

// StartedAt returns when the current or latest activation started.
func (o *Operation) StartedAt() time.Time {
	return o.startedAt
}

// Activation returns the number of the current or latest activation.
func (o *Operation) Activation() uint64 {
	return o.activation
}

// Reset returns the operation to pending and clears its completion time.
func (o *Operation) Reset() {
	o.state = StatePending
	o.success = false
	o.lastExecutedAt = time.Time{}
}

// Start begins a new activation and returns its number.
func (o *Operation) Start(now time.Time) uint64 {
	o.activation++
	o.state = StateExecuting
	o.startedAt = now
	return o.activation
}

// Complete records the outcome of activation. It returns false, leaving the
// operation untouched, when activation is not the one in flight.
func (o *Operation) Complete(activation uint64, success bool, now time.Time) bool {
	if o.state != StateExecuting || o.activation != activation {
		return false
	}
	o.state = StateCompleted
	o.success = success
	o.lastExecutedAt = now
	return true
}

// Info returns a snapshot of the operation.
func (o *Operation) Info() Info {
	return Info{
		Name:           o.Name,
		Dependencies:   append([]string(nil), o.Dependencies...),
		Priority:       o.Priority,
		Kind:           o.Kind,
		State:          o.state,
		Success:        o.success,
		LastExecutedAt: o.lastExecutedAt,
	}
}

// Info is a read-only copy of an operation's definition and state.
type Info struct {
	Name           string    `json:"name" yaml:"name"`
	Dependencies   []string  `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Priority       int       `json:"priority" yaml:"priority"`
	Kind           Kind      `json:"kind" yaml:"kind"`
	State          State     `json:"state" yaml:"state"`
	Success        bool      `json:"success" yaml:"success"`
	LastExecutedAt time.Time `json:"lastExecutedAt,omitempty" yaml:"lastExecutedAt,omitempty"`
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(names))
	ret := make([]string, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		ret = append(ret, name)
	}
	return ret
}
