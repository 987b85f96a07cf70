package assistant

import (
	"context"
	"time"
)

// DefaultCalendarID is searched when no calendars are configured.
const DefaultCalendarID = "primary"

// Backend is the calendar capability the assistant operates on.
// Implementations either resolve or fail; timeouts and retries are theirs to handle.
type Backend interface {
	// ListEvents lists events in one calendar within a time window.
	ListEvents(ctx context.Context, req ListEventsRequest) ([]Event, error)

	// GetEvent retrieves a single event.
	GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error)

	// InsertEvent creates a fully specified event.
	InsertEvent(ctx context.Context, req InsertEventRequest) (*Event, error)

	// UpdateEvent writes the fields of req.Event onto an existing event. Fields
	// Event does not model are left as stored.
	UpdateEvent(ctx context.Context, req UpdateEventRequest) (*Event, error)

	// QuickAddEvent creates an event from free text, letting the backend
	// interpret dates and times.
	QuickAddEvent(ctx context.Context, calendarID, text string) (*Event, error)
}

// ListEventsRequest holds the parameters of a single sub-search.
type ListEventsRequest struct {
	CalendarID   string
	TimeMin      time.Time
	TimeMax      time.Time
	Query        string
	SingleEvents bool
	OrderBy      string
	MaxResults   int64
}

// InsertEventRequest holds the parameters for creating an event.
type InsertEventRequest struct {
	CalendarID            string
	Event                 Event
	SendUpdates           string // "all", "externalOnly", "none"
	ConferenceDataVersion int64
}

// UpdateEventRequest holds the parameters for updating an event.
type UpdateEventRequest struct {
	CalendarID  string
	EventID     string
	Event       Event
	SendUpdates string
}

// Event is a calendar event as seen by the assistant.
type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       EventTime
	End         EventTime
	Attendees   []Attendee
	HTMLLink    string

	// Guest permissions, only meaningful on writes.
	GuestsCanInviteOthers   *bool
	GuestsCanModify         bool
	GuestsCanSeeOtherGuests *bool
	UseDefaultReminders     bool
}

// EventTime is either a timed instant (DateTime, RFC3339) or an all-day date (Date, YYYY-MM-DD).
type EventTime struct {
	DateTime string
	Date     string
	TimeZone string
}

// Attendee is an invited guest.
type Attendee struct {
	Email          string
	DisplayName    string
	ResponseStatus string
}

const dateLayout = "2006-01-02"

// IsAllDay reports whether the time is a date without a time of day.
func (t EventTime) IsAllDay() bool {
	return t.DateTime == "" && t.Date != ""
}

// Instant returns the comparable instant of the time. All-day dates resolve to
// midnight of that date in loc. The second return is false when neither field parses.
func (t EventTime) Instant(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	if t.DateTime != "" {
		if ts, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return ts, true
		}
	}
	if t.Date != "" {
		if ts, err := time.ParseInLocation(dateLayout, t.Date, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Label returns the display name of the attendee, falling back to the email.
func (a Attendee) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Email
}
