package calendar_tools

import (
	"context"
	"sync"

	"github.com/teemow/cassandra/internal/assistant"
	"github.com/teemow/cassandra/internal/calendar"
)

// fakeService is an in-memory server.CalendarService.
type fakeService struct {
	mu sync.Mutex

	events    map[string][]assistant.Event // by calendar ID
	calendars []calendar.CalendarInfo
	listErr   error
	quickErr  error
	getErrs   map[string]error // by event ID

	listCalls     []assistant.ListEventsRequest
	quickAddCalls []string
	insertCalls   []assistant.InsertEventRequest
}

func (f *fakeService) ListEvents(_ context.Context, req assistant.ListEventsRequest) ([]assistant.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, req)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events[req.CalendarID], nil
}

func (f *fakeService) GetEvent(_ context.Context, calendarID, eventID string) (*assistant.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErrs[eventID]; err != nil {
		return nil, err
	}
	for _, ev := range f.events[calendarID] {
		if ev.ID == eventID {
			return &ev, nil
		}
	}
	return &assistant.Event{ID: eventID, Summary: "Quick"}, nil
}

func (f *fakeService) InsertEvent(_ context.Context, req assistant.InsertEventRequest) (*assistant.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls = append(f.insertCalls, req)
	ev := req.Event
	ev.ID = "inserted"
	return &ev, nil
}

func (f *fakeService) UpdateEvent(_ context.Context, req assistant.UpdateEventRequest) (*assistant.Event, error) {
	ev := req.Event
	ev.ID = req.EventID
	return &ev, nil
}

func (f *fakeService) QuickAddEvent(_ context.Context, calendarID, text string) (*assistant.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quickAddCalls = append(f.quickAddCalls, calendarID+":"+text)
	if f.quickErr != nil {
		return nil, f.quickErr
	}
	return &assistant.Event{
		ID:      "quick-1",
		Summary: text,
		Start:   assistant.EventTime{DateTime: "2024-01-16T12:00:00Z"},
		End:     assistant.EventTime{DateTime: "2024-01-16T13:00:00Z"},
	}, nil
}

func (f *fakeService) ListCalendars(context.Context) ([]calendar.CalendarInfo, error) {
	return f.calendars, f.listErr
}

func (f *fakeService) CalendarIDs(context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.calendars))
	for _, c := range f.calendars {
		ids = append(ids, c.ID)
	}
	return ids, f.listErr
}

func (f *fakeService) calendarsSearched() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool)
	for _, c := range f.listCalls {
		out[c.CalendarID] = true
	}
	return out
}
