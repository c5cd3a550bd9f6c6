package fs

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/oploader/service/dao"
)

const extension = ".json"

// Store implements dao.Service keeping one JSON document per record under a
// base URL of any afs supported scheme. Documents are named after the
// hex-encoded key, so keys may hold any character and always stay directly
// under the base URL; the key itself is read back from the document.
type Store[T any] struct {
	baseURL     string
	fs          afs.Service
	keySelector func(*T) string
	filter      func(*T, []*dao.Parameter) bool
	logger      *slog.Logger
	mux         sync.RWMutex
}

var _ dao.Service[string, struct{}] = (*Store[struct{}])(nil)

// Save persists a record.
func (s *Store[T]) Save(ctx context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	if key == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	s.mux.Lock()
	defer s.mux.Unlock()
	location := s.location(key)
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", location, err)
	}
	return nil
}

// Load retrieves a record.
func (s *Store[T]) Load(ctx context.Context, key string) (*T, error) {
	if key == "" {
		return nil, dao.ErrInvalidID
	}
	s.mux.RLock()
	defer s.mux.RUnlock()

	location := s.location(key)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", location, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", dao.ErrNotFound, key)
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	ret := new(T)
	if err = json.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", location, err)
	}
	return ret, nil
}

// Delete removes a record.
func (s *Store[T]) Delete(ctx context.Context, key string) error {
	if key == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()

	location := s.location(key)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", location, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", dao.ErrNotFound, key)
	}
	if err = s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("failed to delete %s: %w", location, err)
	}
	return nil
}

// List returns every matching record. Unreadable documents are logged and
// skipped.
func (s *Store[T]) List(ctx context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	objects, err := s.fs.List(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.baseURL, err)
	}
	var ret []*T
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), extension) {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.Warn("failed to read record", "url", object.URL(), "error", err)
			continue
		}
		record := new(T)
		if err = json.Unmarshal(data, record); err != nil {
			s.logger.Warn("failed to unmarshal record", "url", object.URL(), "error", err)
			continue
		}
		if s.filter != nil && !s.filter(record, parameters) {
			continue
		}
		ret = append(ret, record)
	}
	return ret, nil
}

func (s *Store[T]) location(key string) string {
	return url.Join(s.baseURL, hex.EncodeToString([]byte(key))+extension)
}

// New creates a store rooted at baseURL, creating the location when missing.
// A nil logger selects slog.Default.
func New[T any](ctx context.Context, baseURL string, keySelector func(*T) string, filter func(*T, []*dao.Parameter) bool, logger *slog.Logger) (*Store[T], error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	fs := afs.New()
	baseURL = url.Normalize(baseURL, file.Scheme)
	exists, err := fs.Exists(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", baseURL, err)
	}
	if !exists {
		if err = fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", baseURL, err)
		}
	}
	return &Store[T]{
		baseURL:     baseURL,
		fs:          fs,
		keySelector: keySelector,
		filter:      filter,
		logger:      logger,
	}, nil
}
