package dao

import "errors"

var (
	// ErrNotFound is returned by Load and Delete for a key with no record,
	// for instance an operation that never started or was already removed.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID is returned for records whose key is empty, such as an
	// unnamed operation snapshot.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when saving a nil record.
	ErrNilEntity = errors.New("dao: nil entity")
)
