package memory

import (
	"context"
	"sync"

	"github.com/viant/oploader/service/dao"
)

// Store is a generic in-memory implementation of dao.Service. Records are
// copied on the way in and out.
type Store[K comparable, T any] struct {
	mux         sync.RWMutex
	records     map[K]T
	keySelector func(*T) K
	filter      func(*T, []*dao.Parameter) bool
}

var _ dao.Service[string, struct{}] = (*Store[string, struct{}])(nil)

// New creates a store; keySelector extracts the record key and filter, when
// not nil, decides which records List returns.
func New[K comparable, T any](keySelector func(*T) K, filter func(*T, []*dao.Parameter) bool) *Store[K, T] {
	return &Store[K, T]{
		records:     make(map[K]T),
		keySelector: keySelector,
		filter:      filter,
	}
}

// Save stores or overwrites a record.
func (s *Store[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	var zero K
	if key == zero {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.records[key] = *v
	return nil
}

// Load returns a copy of the record stored under key.
func (s *Store[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return &v, nil
}

// Delete removes a record.
func (s *Store[K, T]) Delete(_ context.Context, key K) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.records[key]; !ok {
		return dao.ErrNotFound
	}
	delete(s.records, key)
	return nil
}

// List returns copies of the matching records in no particular order.
func (s *Store[K, T]) List(_ context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make([]*T, 0, len(s.records))
	for _, v := range s.records {
		record := v
		if s.filter != nil && !s.filter(&record, parameters) {
			continue
		}
		out = append(out, &record)
	}
	return out, nil
}
