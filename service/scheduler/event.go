package scheduler

// EventType enumerates control events consumed by the dispatch loop.
type EventType int

const (
	// EventNext asks for a selection pass.
	EventNext EventType = iota
	// EventAdded follows a registration.
	EventAdded
	// EventRemoved follows a removal.
	EventRemoved
	// EventCompleted follows an accepted completion report.
	EventCompleted
	// EventWatchdog re-checks the graph when work is still outstanding.
	EventWatchdog
)

func (t EventType) String() string {
	switch t {
	case EventNext:
		return "next"
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventCompleted:
		return "completed"
	case EventWatchdog:
		return "watchdog"
	}
	return "unknown"
}

// Event is a control message for the dispatch loop.
type Event struct {
	Type EventType
	Name string
}
