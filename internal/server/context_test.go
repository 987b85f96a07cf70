package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/cassandra/internal/assistant"
	"github.com/teemow/cassandra/internal/calendar"
	"github.com/teemow/cassandra/internal/google"
)

// fakeCalendarService satisfies CalendarService without any network access.
type fakeCalendarService struct {
	calendars []calendar.CalendarInfo
	events    []assistant.Event
	err       error
}

func (f *fakeCalendarService) ListEvents(_ context.Context, _ assistant.ListEventsRequest) ([]assistant.Event, error) {
	return f.events, f.err
}

func (f *fakeCalendarService) GetEvent(_ context.Context, _, eventID string) (*assistant.Event, error) {
	return &assistant.Event{ID: eventID}, f.err
}

func (f *fakeCalendarService) InsertEvent(_ context.Context, req assistant.InsertEventRequest) (*assistant.Event, error) {
	ev := req.Event
	ev.ID = "inserted"
	return &ev, f.err
}

func (f *fakeCalendarService) UpdateEvent(_ context.Context, req assistant.UpdateEventRequest) (*assistant.Event, error) {
	ev := req.Event
	ev.ID = req.EventID
	return &ev, f.err
}

func (f *fakeCalendarService) QuickAddEvent(_ context.Context, _, text string) (*assistant.Event, error) {
	return &assistant.Event{ID: "quick", Summary: text}, f.err
}

func (f *fakeCalendarService) ListCalendars(context.Context) ([]calendar.CalendarInfo, error) {
	return f.calendars, f.err
}

func (f *fakeCalendarService) CalendarIDs(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	ids := make([]string, 0, len(f.calendars))
	for _, c := range f.calendars {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func newTestServerContext(t *testing.T, config Config) *ServerContext {
	t.Helper()
	if config.TokenProvider == nil {
		config.TokenProvider = google.NewFileTokenProviderInDir(t.TempDir())
	}
	sc, err := NewServerContext(context.Background(), config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestNewServerContext_Defaults(t *testing.T) {
	sc := newTestServerContext(t, Config{})

	assert.Equal(t, assistant.LocalLocation().String(), sc.Location().String())
	assert.NotNil(t, sc.OAuthConfig())
	assert.NotNil(t, sc.Metrics())
	assert.NotNil(t, sc.Logger())
	assert.Nil(t, sc.AuditLogger())
	assert.False(t, sc.ReadOnly())
}

func TestNewServerContext_RequiresTokenProvider(t *testing.T) {
	_, err := NewServerContext(context.Background(), Config{})
	assert.Error(t, err)
}

func TestServerContext_Now(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	fixed := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	sc := newTestServerContext(t, Config{
		Location: berlin,
		Clock:    func() time.Time { return fixed },
	})

	now := sc.Now()
	assert.True(t, now.Equal(fixed))
	assert.Equal(t, berlin, now.Location())
	assert.Equal(t, 11, now.Hour())
}

func TestServerContext_CalendarServiceForAccount_NoToken(t *testing.T) {
	sc := newTestServerContext(t, Config{})

	assert.False(t, sc.HasTokenForAccount("default"))
	svc, err := sc.CalendarServiceForAccount("default")
	assert.Nil(t, svc)
	assert.ErrorIs(t, err, google.ErrNoToken)
}

func TestServerContext_CalendarServiceForAccount_Caches(t *testing.T) {
	sc := newTestServerContext(t, Config{
		TokenProvider: google.NewStaticTokenProvider("token"),
		ClientOptions: []calendar.ClientOption{calendar.WithEndpoint("http://127.0.0.1:0/")},
	})

	first, err := sc.CalendarServiceForAccount("default")
	require.NoError(t, err)
	second, err := sc.CalendarServiceForAccount("default")
	require.NoError(t, err)
	assert.Same(t, first, second)

	sc.InvalidateAccount("default")
	third, err := sc.CalendarServiceForAccount("default")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestServerContext_CalendarServiceForRequest(t *testing.T) {
	sc := newTestServerContext(t, Config{})
	cached := &fakeCalendarService{}
	sc.SetCalendarServiceForAccount("work", cached)

	svc, err := sc.CalendarServiceForRequest(context.Background(), "work")
	require.NoError(t, err)
	assert.Same(t, cached, svc)

	ctx := ContextWithForwardedToken(context.Background(), &oauth2.Token{AccessToken: "forwarded", Expiry: time.Now().Add(time.Hour)})
	svc, err = sc.CalendarServiceForRequest(ctx, "other")
	require.NoError(t, err)
	client, ok := svc.(*calendar.Client)
	require.True(t, ok)
	assert.Equal(t, "other", client.Account())

	// The forwarded client is not cached for the account.
	_, err = sc.CalendarServiceForAccount("other")
	assert.ErrorIs(t, err, google.ErrNoToken)
}

func TestServerContext_SetCalendarServiceForAccount(t *testing.T) {
	sc := newTestServerContext(t, Config{})
	fake := &fakeCalendarService{}

	sc.SetCalendarServiceForAccount("work", fake)

	assert.True(t, sc.HasTokenForAccount("work"))
	svc, err := sc.CalendarServiceForAccount("work")
	require.NoError(t, err)
	assert.Same(t, fake, svc)
}

func TestServerContext_CalendarIDs(t *testing.T) {
	fake := &fakeCalendarService{calendars: []calendar.CalendarInfo{
		{ID: "me@example.com", Primary: true},
		{ID: "team@group.calendar.google.com"},
	}}
	ctx := context.Background()

	tests := []struct {
		name       string
		configured []string
		explicit   []string
		want       []string
	}{
		{name: "nothing configured", want: []string{"primary"}},
		{name: "configured", configured: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "explicit wins", configured: []string{"a"}, explicit: []string{"c"}, want: []string{"c"}},
		{name: "discover", configured: []string{DiscoverCalendars}, want: []string{"me@example.com", "team@group.calendar.google.com"}},
		{name: "explicit discover", explicit: []string{DiscoverCalendars}, want: []string{"me@example.com", "team@group.calendar.google.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newTestServerContext(t, Config{CalendarIDs: tt.configured})
			ids, err := sc.CalendarIDs(ctx, fake, tt.explicit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestServerContext_CalendarIDs_DiscoveryError(t *testing.T) {
	sc := newTestServerContext(t, Config{CalendarIDs: []string{DiscoverCalendars}})
	_, err := sc.CalendarIDs(context.Background(), &fakeCalendarService{err: errors.New("boom")}, nil)
	assert.Error(t, err)
}

func TestServerContext_SearcherUsesClock(t *testing.T) {
	fixed := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	sc := newTestServerContext(t, Config{
		Location: time.UTC,
		Clock:    func() time.Time { return fixed },
	})
	fake := &fakeCalendarService{events: []assistant.Event{{ID: "1", Summary: "Standup"}}}

	res := sc.Searcher(fake, nil).Search(context.Background(), assistant.SearchRequest{Query: "today"})

	assert.True(t, res.Window.TimeMin.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.Len(t, res.Events, 1)
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t, Config{})

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())
	require.NoError(t, sc.Shutdown())
}
