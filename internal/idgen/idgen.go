// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Callers should treat identifiers as opaque strings.
package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new unique identifier.
func New() string { return NewFunc() }

// Named returns prefix + "/" + a new unique identifier.
func Named(prefix string) string {
	if prefix == "" {
		return New()
	}
	return prefix + "/" + New()
}
