package scheduler

import "github.com/viant/oploader/model/operation"

// selection is the outcome of one scan of the registry.
type selection struct {
	op *operation.Operation
	// unexecuted is set when some operation has not completed.
	unexecuted bool
	// executing is set when some operation is in flight.
	executing bool
	// incomplete is set when some dependency is not registered.
	incomplete bool
	// pending lists operations that have not completed.
	pending []string
}

// isCycle reports a stall that only a dependency cycle can explain: work
// remains, nothing is running and every dependency exists.
func (s selection) isCycle() bool {
	return s.op == nil && s.unexecuted && !s.executing && !s.incomplete
}

// selectNext picks the highest priority ready operation. An operation is
// ready when all its dependencies are registered and completed, and it is
// either not completed itself or stale. Ties go to the earliest registered.
// Caller holds mux.
func (s *Service) selectNext() selection {
	var ret selection
	check := newStaleness(s.registry)
	for _, op := range s.registry.list() {
		if op.IsExecuting() {
			ret.executing = true
			continue
		}
		if !op.IsCompleted() {
			ret.unexecuted = true
			ret.pending = append(ret.pending, op.Name)
		}
		ready := true
		for _, name := range op.Dependencies {
			dep := s.registry.get(name)
			if dep == nil {
				ret.incomplete = true
				ready = false
				break
			}
			if !dep.IsCompleted() {
				ready = false
			}
		}
		if !ready {
			continue
		}
		if op.IsCompleted() && !check.isStale(op) {
			continue
		}
		if ret.op == nil || op.Priority > ret.op.Priority {
			ret.op = op
		}
	}
	return ret
}

// staleness decides whether completed operations must run again because a
// dependency completed after them. An operation whose dependency is itself
// stale waits for that dependency to refresh first, so a re-run ripples
// through the graph one level at a time.
type staleness struct {
	registry *registry
	memo     map[*operation.Operation]bool
	visiting map[*operation.Operation]bool
}

func newStaleness(r *registry) *staleness {
	return &staleness{
		registry: r,
		memo:     map[*operation.Operation]bool{},
		visiting: map[*operation.Operation]bool{},
	}
}

func (c *staleness) isStale(op *operation.Operation) bool {
	if !op.IsCompleted() {
		return false
	}
	if stale, ok := c.memo[op]; ok {
		return stale
	}
	if c.visiting[op] {
		return false
	}
	c.visiting[op] = true
	defer delete(c.visiting, op)

	newer := false
	for _, name := range op.Dependencies {
		dep := c.registry.get(name)
		if dep == nil || !dep.IsCompleted() {
			continue
		}
		if c.isStale(dep) {
			c.memo[op] = false
			return false
		}
		if dep.LastExecutedAt().After(op.LastExecutedAt()) {
			newer = true
		}
	}
	c.memo[op] = newer
	return newer
}
