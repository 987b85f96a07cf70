package assistant

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// fakeBackend is an in-memory Backend. Hooks override the default behaviour of
// each call; every call is recorded.
type fakeBackend struct {
	mu sync.Mutex

	listFn     func(req ListEventsRequest) ([]Event, error)
	getFn      func(calendarID, eventID string) (*Event, error)
	insertFn   func(req InsertEventRequest) (*Event, error)
	updateFn   func(req UpdateEventRequest) (*Event, error)
	quickAddFn func(calendarID, text string) (*Event, error)

	listCalls     []ListEventsRequest
	insertCalls   []InsertEventRequest
	updateCalls   []UpdateEventRequest
	quickAddCalls []string
	getCalls      []string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

var errNotConfigured = errors.New("fake: not configured")

func (f *fakeBackend) ListEvents(ctx context.Context, req ListEventsRequest) ([]Event, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.listCalls = append(f.listCalls, req)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(req)
}

func (f *fakeBackend) GetEvent(_ context.Context, calendarID, eventID string) (*Event, error) {
	f.mu.Lock()
	f.getCalls = append(f.getCalls, eventID)
	f.mu.Unlock()
	if f.getFn == nil {
		return nil, errNotConfigured
	}
	return f.getFn(calendarID, eventID)
}

func (f *fakeBackend) InsertEvent(_ context.Context, req InsertEventRequest) (*Event, error) {
	f.mu.Lock()
	f.insertCalls = append(f.insertCalls, req)
	f.mu.Unlock()
	if f.insertFn == nil {
		return nil, errNotConfigured
	}
	return f.insertFn(req)
}

func (f *fakeBackend) UpdateEvent(_ context.Context, req UpdateEventRequest) (*Event, error) {
	f.mu.Lock()
	f.updateCalls = append(f.updateCalls, req)
	f.mu.Unlock()
	if f.updateFn == nil {
		return nil, errNotConfigured
	}
	return f.updateFn(req)
}

func (f *fakeBackend) QuickAddEvent(_ context.Context, calendarID, text string) (*Event, error) {
	f.mu.Lock()
	f.quickAddCalls = append(f.quickAddCalls, text)
	f.mu.Unlock()
	if f.quickAddFn == nil {
		return nil, errNotConfigured
	}
	return f.quickAddFn(calendarID, text)
}

// timed returns an event starting at the given RFC3339 instant and lasting an hour.
func timed(id, summary, start string) Event {
	ts, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	return Event{
		ID:      id,
		Summary: summary,
		Start:   EventTime{DateTime: start},
		End:     EventTime{DateTime: ts.Add(time.Hour).Format(time.RFC3339)},
	}
}

// recorder counts measurements.
type recorder struct {
	mu        sync.Mutex
	subsearch map[string]int
	results   []int
	creations []string
}

func newRecorder() *recorder {
	return &recorder{subsearch: map[string]int{}}
}

func (r *recorder) RecordSubsearch(_ context.Context, _ string, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subsearch[status]++
}

func (r *recorder) RecordSearchResults(_ context.Context, _ string, events int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, events)
}

func (r *recorder) RecordEventCreation(_ context.Context, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creations = append(r.creations, outcome)
}
