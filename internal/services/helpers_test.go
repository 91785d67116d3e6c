package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"painel/internal/clock"
	"painel/internal/core"
	"painel/internal/store"
)

// testClock is a settable time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t *testing.T, s string) {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	c.mu.Lock()
	c.now = v
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev core.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Types() []core.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]core.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type testEnv struct {
	store  *store.Store
	clock  *clock.Clock
	time   *testClock
	events *recordingPublisher
}

func newTestEnv(t *testing.T, opts ...clock.Option) *testEnv {
	t.Helper()
	medium, err := store.NewFileMedium(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileMedium: %v", err)
	}
	tc := &testClock{}
	tc.Set(t, "2025-01-15T15:00:00Z") // Wednesday, 12:00 at UTC-3
	opts = append([]clock.Option{clock.WithNow(tc.Now)}, opts...)
	return &testEnv{
		store:  store.New(medium, store.Defaults{WeeklyGoal: 2000000, MonthlyGoal: 8000000}, nil),
		clock:  clock.New(-180, opts...),
		time:   tc,
		events: &recordingPublisher{},
	}
}

func (e *testEnv) entries() *EntryService {
	return NewEntryService(e.store, e.clock, e.events, nil)
}

func (e *testEnv) aggregator() *Aggregator {
	return NewAggregator(e.store, e.clock, e.events, nil)
}

func (e *testEnv) load(t *testing.T) *core.Document {
	t.Helper()
	doc, err := e.store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return doc
}

// addAt records a sale at the given instant.
func (e *testEnv) addAt(t *testing.T, at string, amount float64, client string) core.Entry {
	t.Helper()
	e.time.Set(t, at)
	res, err := e.entries().Add(context.Background(), amount, "Ana", client)
	if err != nil {
		t.Fatalf("Add(%v) at %s: %v", amount, at, err)
	}
	return res.Entry
}

var errPublish = errors.New("broker down")
