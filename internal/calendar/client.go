package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/cassandra/internal/assistant"
	"github.com/teemow/cassandra/internal/google"
	"github.com/teemow/cassandra/internal/instrumentation"
)

// Client wraps the Google Calendar service for a single account.
type Client struct {
	svc     *calendar.Service
	account string
	metrics *instrumentation.Metrics
}

var _ assistant.Backend = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	metrics    *instrumentation.Metrics
	apiOptions []option.ClientOption
}

// WithMetrics records every API call in m.
func WithMetrics(m *instrumentation.Metrics) ClientOption {
	return func(c *clientConfig) {
		c.metrics = m
	}
}

// WithEndpoint points the client at a different API base URL.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *clientConfig) {
		c.apiOptions = append(c.apiOptions, option.WithEndpoint(endpoint))
	}
}

// NewClient creates a Calendar client authenticated by ts.
func NewClient(ctx context.Context, account string, ts oauth2.TokenSource, opts ...ClientOption) (*Client, error) {
	if ts == nil {
		return nil, fmt.Errorf("token source cannot be nil")
	}

	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Force HTTP/1.1 by disabling HTTP/2
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   &http.Transport{Proxy: http.ProxyFromEnvironment, ForceAttemptHTTP2: false},
		},
	}

	apiOptions := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, cfg.apiOptions...)
	svc, err := calendar.NewService(ctx, apiOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:     svc,
		account: account,
		metrics: cfg.metrics,
	}, nil
}

// NewClientForAccount creates a Calendar client using the account's stored token.
func NewClientForAccount(ctx context.Context, conf *oauth2.Config, provider google.TokenProvider, account string, opts ...ClientOption) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	ts, err := google.TokenSource(ctx, conf, provider, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}
	return NewClient(ctx, account, ts, opts...)
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// observe starts the span and clock for one API call. The returned function
// must be called with the call's error.
func (c *Client) observe(ctx context.Context, operation string, b *instrumentation.SpanAttributeBuilder) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, operation,
		b.WithAccount(c.account).Build()...)

	return ctx, func(err error) {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
		}
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, time.Since(start))
		instrumentation.EndSpan(span, err)
	}
}

// ListEvents lists events in a calendar within a time range. Only the first
// page is fetched; MaxResults bounds its size.
func (c *Client) ListEvents(ctx context.Context, req assistant.ListEventsRequest) (events []assistant.Event, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationList,
		instrumentation.NewSpanAttributeBuilder().WithCalendar(req.CalendarID))
	defer func() { done(err) }()

	call := c.svc.Events.List(req.CalendarID).
		TimeMin(req.TimeMin.Format(time.RFC3339)).
		TimeMax(req.TimeMax.Format(time.RFC3339)).
		SingleEvents(req.SingleEvents).
		Context(ctx)

	if req.OrderBy != "" {
		call = call.OrderBy(req.OrderBy)
	}
	if req.Query != "" {
		call = call.Q(req.Query)
	}
	if req.MaxResults > 0 {
		call = call.MaxResults(req.MaxResults)
	}

	list, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events = make([]assistant.Event, 0, len(list.Items))
	for _, item := range list.Items {
		events = append(events, toEvent(item))
	}
	return events, nil
}

// GetEvent retrieves a specific event by ID.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (_ *assistant.Event, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationGet,
		instrumentation.NewSpanAttributeBuilder().WithCalendar(calendarID).WithEventID(eventID))
	defer func() { done(err) }()

	event, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	e := toEvent(event)
	return &e, nil
}

// InsertEvent creates a fully specified event.
func (c *Client) InsertEvent(ctx context.Context, req assistant.InsertEventRequest) (_ *assistant.Event, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationInsert,
		instrumentation.NewSpanAttributeBuilder().WithCalendar(req.CalendarID))
	defer func() { done(err) }()

	call := c.svc.Events.Insert(req.CalendarID, fromEvent(req.Event)).Context(ctx)
	if req.SendUpdates != "" {
		call = call.SendUpdates(req.SendUpdates)
	}
	if req.ConferenceDataVersion > 0 {
		call = call.ConferenceDataVersion(req.ConferenceDataVersion)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	e := toEvent(created)
	return &e, nil
}

// UpdateEvent patches an existing event. Only the fields assistant.Event models
// are sent, so colors, recurrence, reminder overrides and conference data stay
// as stored.
func (c *Client) UpdateEvent(ctx context.Context, req assistant.UpdateEventRequest) (_ *assistant.Event, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationUpdate,
		instrumentation.NewSpanAttributeBuilder().WithCalendar(req.CalendarID).WithEventID(req.EventID))
	defer func() { done(err) }()

	patch := fromEvent(req.Event)
	patch.ForceSendFields = append(patch.ForceSendFields, "GuestsCanModify")

	call := c.svc.Events.Patch(req.CalendarID, req.EventID, patch).Context(ctx)
	if req.SendUpdates != "" {
		call = call.SendUpdates(req.SendUpdates)
	}

	updated, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	e := toEvent(updated)
	return &e, nil
}

// QuickAddEvent creates an event from free text using Google's own parser.
func (c *Client) QuickAddEvent(ctx context.Context, calendarID, text string) (_ *assistant.Event, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationQuickAdd,
		instrumentation.NewSpanAttributeBuilder().WithCalendar(calendarID))
	defer func() { done(err) }()

	created, err := c.svc.Events.QuickAdd(calendarID, text).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to quick-add event: %w", err)
	}

	e := toEvent(created)
	return &e, nil
}

// ListCalendars lists every calendar in the user's calendar list, following pagination.
func (c *Client) ListCalendars(ctx context.Context) (calendars []CalendarInfo, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationListCalendar, instrumentation.NewSpanAttributeBuilder())
	defer func() { done(err) }()

	err = c.svc.CalendarList.List().Context(ctx).Pages(ctx, func(page *calendar.CalendarList) error {
		for _, entry := range page.Items {
			calendars = append(calendars, toCalendarInfo(entry))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	return calendars, nil
}

// CalendarIDs returns the IDs of all calendars the account can see, primary first.
func (c *Client) CalendarIDs(ctx context.Context) ([]string, error) {
	calendars, err := c.ListCalendars(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(calendars))
	for _, cal := range calendars {
		if cal.Primary {
			ids = append([]string{cal.ID}, ids...)
			continue
		}
		ids = append(ids, cal.ID)
	}
	return ids, nil
}
