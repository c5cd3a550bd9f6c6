// Package operation defines the Operation record scheduled by oploader: its
// identity, declared dependencies, priority and execution state, plus the
// Body contract task authors implement.
package operation
