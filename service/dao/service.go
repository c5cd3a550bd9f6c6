// Package dao defines storage for operation outcomes recorded by the journal.
package dao

import (
	"context"
)

// Service stores records of type T keyed by K. The journal uses
// Service[string, operation.Info], keyed by operation name, keeping only the
// latest record per name: Save overwrites, Delete follows a removal.
type Service[K comparable, T any] interface {
	// Save inserts or replaces the record under its key.
	Save(ctx context.Context, t *T) error

	// Load returns the record stored under id or an error wrapping ErrNotFound.
	Load(ctx context.Context, id K) (*T, error)

	// Delete drops the record stored under id or returns an error wrapping ErrNotFound.
	Delete(ctx context.Context, id K) error

	// List returns the records matching every parameter, in no particular order.
	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
