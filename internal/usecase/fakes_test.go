package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

// --- device ---

type step struct {
	line string
	err  error
}

func lines(ls ...string) []step {
	out := make([]step, 0, len(ls))
	for _, l := range ls {
		out = append(out, step{line: l})
	}
	return out
}

// scriptedConn replays steps, then behaves like an idle serial port: every read
// waits one timeout and reports domain.ErrReadTimeout, ignoring ctx. If end is
// set it is returned instead once the script is exhausted.
type scriptedConn struct {
	mu      sync.Mutex
	steps   []step
	pos     int
	end     error
	timeout time.Duration
	closed  int
}

func (c *scriptedConn) ReadLine(_ context.Context) (string, error) {
	c.mu.Lock()
	if c.pos < len(c.steps) {
		s := c.steps[c.pos]
		c.pos++
		c.mu.Unlock()
		return s.line, s.err
	}
	end := c.end
	c.mu.Unlock()

	if end != nil {
		return "", end
	}
	time.Sleep(c.timeout)
	return "", domain.ErrReadTimeout
}

func (c *scriptedConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *scriptedConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeLink struct {
	conn    *scriptedConn
	openErr error
	opened  int
}

func (l *fakeLink) Open(_ context.Context, _ domain.DeviceConfig) (ports.Connection, error) {
	l.opened++
	if l.openErr != nil {
		return nil, l.openErr
	}
	return l.conn, nil
}

func newLink(steps []step, end error) (*fakeLink, *scriptedConn) {
	c := &scriptedConn{steps: steps, end: end, timeout: 10 * time.Millisecond}
	return &fakeLink{conn: c}, c
}

// --- records ---

type memRecordStore struct {
	mu        sync.Mutex
	committed map[string][]float64
	aborted   int
	failAfter int // Append fails once this many values were written; 0 disables
}

func newMemRecordStore() *memRecordStore {
	return &memRecordStore{committed: map[string][]float64{}}
}

func (s *memRecordStore) Open(w domain.Window) (ports.RecordLog, error) {
	return &memRecordLog{store: s, id: w.ID}, nil
}

func (s *memRecordStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.committed)
}

func (s *memRecordStore) values(id string) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed[id]
}

type memRecordLog struct {
	store  *memRecordStore
	id     string
	values []float64
}

func (l *memRecordLog) Append(v float64) error {
	if l.store.failAfter > 0 && len(l.values) >= l.store.failAfter {
		return errors.New("disk full")
	}
	l.values = append(l.values, v)
	return nil
}

func (l *memRecordLog) Flush() error { return nil }

func (l *memRecordLog) Close() error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	l.store.committed[l.id] = l.values
	return nil
}

func (l *memRecordLog) Abort() error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	l.store.aborted++
	return nil
}

func (l *memRecordLog) Path() string { return "windows/" + l.id + ".csv" }

// --- classifier ---

type stubClassifier struct {
	mu      sync.Mutex
	results []domain.ProbabilityVector
	errs    []error
	calls   int
	seen    [][]float64
}

func (c *stubClassifier) Predict(_ context.Context, w domain.Window) (domain.ProbabilityVector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	c.calls++
	c.seen = append(c.seen, w.Values())

	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if len(c.results) == 0 {
		return nil, errors.New("no result scripted")
	}
	if i < len(c.results) {
		return c.results[i], nil
	}
	return c.results[len(c.results)-1], nil
}

// --- messaging ---

type recordingMessenger struct {
	mu       sync.Mutex
	calls    []string
	messages []string
}

func (m *recordingMessenger) PlaceCall(_ context.Context, to, _, payload string) (domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, to+" "+payload)
	return domain.Receipt{ID: "CA1", Status: "queued"}, nil
}

func (m *recordingMessenger) SendMessage(_ context.Context, to, _, body string) (domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, to+" "+body)
	return domain.Receipt{ID: "SM1", Status: "queued"}, nil
}

// --- sinks and stores ---

type captureSink struct {
	mu   sync.Mutex
	outs []domain.WindowOutcome
	err  error
}

func (s *captureSink) Publish(_ context.Context, out domain.WindowOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outs = append(s.outs, out)
	return s.err
}

type fakeStore struct {
	saved bool
	last  domain.RunArtifact
	err   error
}

func (s *fakeStore) SaveRun(run domain.RunArtifact) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = true
	s.last = run
	return "run-123", nil
}

var (
	_ ports.DeviceLink    = (*fakeLink)(nil)
	_ ports.RecordStore   = (*memRecordStore)(nil)
	_ ports.Classifier    = (*stubClassifier)(nil)
	_ ports.Messenger     = (*recordingMessenger)(nil)
	_ ports.ResultSink    = (*captureSink)(nil)
	_ ports.ArtifactStore = (*fakeStore)(nil)
)
