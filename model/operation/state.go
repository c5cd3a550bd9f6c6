package operation

// State is the execution state of an Operation.
type State int

const (
	// StatePending means the operation waits to be selected, either because it
	// never ran or because it was re-triggered.
	StatePending State = iota
	// StateExecuting means OnReady was invoked and done has not been reported.
	StateExecuting
	// StateCompleted means done was reported for the latest activation.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateExecuting:
		return "executing"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// Kind distinguishes author-supplied operations from internal helpers.
type Kind int

const (
	// KindUser is an operation registered by the host program.
	KindUser Kind = iota
	// KindWaiter is a one-shot helper registered by WaitFor.
	KindWaiter
)

func (k Kind) String() string {
	if k == KindWaiter {
		return "waiter"
	}
	return "user"
}
