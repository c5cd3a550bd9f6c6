package scheduler

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/viant/oploader/internal/logger"
	"github.com/viant/oploader/model/operation"
)

const (
	waitFor  = 2 * time.Second
	pollEach = 2 * time.Millisecond
)

var testConfig = Config{TickInterval: 5 * time.Millisecond, WatchdogInterval: 20 * time.Millisecond}

// recorder collects the names of operations in the order their bodies ran.
type recorder struct {
	mux      sync.Mutex
	runs     []string
	statuses map[string][]operation.Status
}

func newRecorder() *recorder {
	return &recorder{statuses: map[string][]operation.Status{}}
}

func (r *recorder) body(name string) operation.Body {
	return r.bodyWith(name, true)
}

func (r *recorder) bodyWith(name string, success bool) operation.Body {
	return operation.BodyFunc(func(done operation.Done, statuses []operation.Status) {
		r.record(name, statuses)
		done(success)
	})
}

func (r *recorder) record(name string, statuses []operation.Status) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.runs = append(r.runs, name)
	r.statuses[name] = statuses
}

func (r *recorder) order() []string {
	r.mux.Lock()
	defer r.mux.Unlock()
	return append([]string(nil), r.runs...)
}

func (r *recorder) count() int {
	r.mux.Lock()
	defer r.mux.Unlock()
	return len(r.runs)
}

func (r *recorder) statusesOf(name string) []operation.Status {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.statuses[name]
}

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mux sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mux.Lock()
	defer b.mux.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mux.Lock()
	defer b.mux.Unlock()
	return b.buf.String()
}

// held is a body that keeps its done callback for the test to report later.
type held struct {
	started chan struct{}
	mux     sync.Mutex
	done    []operation.Done
}

func newHeld() *held {
	return &held{started: make(chan struct{}, 8)}
}

func (h *held) OnReady(done operation.Done, _ []operation.Status) {
	h.mux.Lock()
	h.done = append(h.done, done)
	h.mux.Unlock()
	h.started <- struct{}{}
}

func (h *held) report(t *testing.T, activation int, success bool) {
	t.Helper()
	h.mux.Lock()
	require.Greater(t, len(h.done), activation)
	done := h.done[activation]
	h.mux.Unlock()
	done(success)
}

func (h *held) awaitStart(t *testing.T) {
	t.Helper()
	select {
	case <-h.started:
	case <-time.After(waitFor):
		t.Fatal("operation did not start")
	}
}

func newTestService(t *testing.T, options ...Option) *Service {
	t.Helper()
	options = append([]Option{WithConfig(testConfig), WithLogger(logger.Discard())}, options...)
	srv, err := New(options...)
	require.NoError(t, err)
	t.Cleanup(srv.Shutdown)
	return srv
}

func start(t *testing.T, srv *Service) {
	t.Helper()
	require.NoError(t, srv.Start(context.Background()))
}

// settle gives the loop time for several ticks and a watchdog round.
func settle() {
	time.Sleep(3 * testConfig.WatchdogInterval)
}
