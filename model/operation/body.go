package operation

// Status reports the outcome of one dependency to OnReady.
type Status struct {
	Name    string `json:"name" yaml:"name"`
	Success bool   `json:"success" yaml:"success"`
}

// Done reports completion of an activation. Only the first call per
// activation has an effect; it may be invoked from any goroutine.
type Done func(success bool)

// Body is the work attached to an Operation.
//
// OnReady is invoked once per activation on the scheduler's dispatch
// goroutine, with one Status per declared dependency. The implementation must
// eventually call done, either before returning or later from elsewhere.
// Blocking inside OnReady stalls the whole scheduler.
type Body interface {
	OnReady(done Done, statuses []Status)
}

// BodyFunc adapts a function to Body.
type BodyFunc func(done Done, statuses []Status)

// OnReady calls f(done, statuses).
func (f BodyFunc) OnReady(done Done, statuses []Status) {
	f(done, statuses)
}

// Func wraps a plain callback; success is reported once fn returns.
func Func(fn func()) Body {
	return BodyFunc(func(done Done, _ []Status) {
		if fn != nil {
			fn()
		}
		done(true)
	})
}

// AllSucceeded reports whether every status carries success.
func AllSucceeded(statuses []Status) bool {
	for _, status := range statuses {
		if !status.Success {
			return false
		}
	}
	return true
}
