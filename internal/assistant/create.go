package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teemow/cassandra/internal/logging"
)

// Status is the shape of a creation outcome.
type Status int

const (
	// OutcomeFailed means no event was created.
	OutcomeFailed Status = iota
	// OutcomeCreated means the event exists, with any requested attendees invited.
	OutcomeCreated
	// OutcomeCreatedWithAttendeeFailure means the event exists but attendees could not be attached.
	OutcomeCreatedWithAttendeeFailure
)

func (s Status) String() string {
	switch s {
	case OutcomeCreated:
		return "created"
	case OutcomeCreatedWithAttendeeFailure:
		return "created_with_attendee_failure"
	default:
		return "failed"
	}
}

const (
	responseNeedsAction   = "needsAction"
	sendUpdatesAll        = "all"
	conferenceDataVersion = 1
)

var (
	// errMissingEventID is the attendee failure reported when the created event has no ID.
	errMissingEventID = errors.New("created event has no ID")
	// errNoEvent is reported when the backend succeeds without returning an event.
	errNoEvent = errors.New("calendar backend returned no event")
)

// CreationOutcome is the result of Creator.Create.
type CreationOutcome struct {
	Status Status
	// Event is the created event, nil on failure.
	Event *Event
	// Attendees is the parsed attendee line. Only Valid entries are invited.
	Attendees AttendeeSet
	// Reason explains why attendees could not be attached.
	Reason error
	// ErrorKind and Message describe a failed creation.
	ErrorKind ErrorKind
	Message   string

	loc *time.Location
}

// Created reports whether an event exists after the operation.
func (o CreationOutcome) Created() bool {
	return o.Status != OutcomeFailed
}

// String renders the outcome as reply text.
func (o CreationOutcome) String() string {
	if o.Status == OutcomeFailed || o.Event == nil {
		return o.Message
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Event %q created successfully.\n", o.Event.Summary)
	fmt.Fprintf(&b, "Event ID: %s\n", o.Event.ID)
	fmt.Fprintf(&b, "Time: %s", formatCreatedTime(o.Event.Start, o.Event.End, o.loc))
	if o.Event.Location != "" {
		fmt.Fprintf(&b, "\nLocation: %s", o.Event.Location)
	}

	switch {
	case o.Status == OutcomeCreatedWithAttendeeFailure:
		fmt.Fprintf(&b, "\n(Note: Event created but couldn't add attendees: %v)", o.Reason)
	case len(o.Attendees.Valid) > 0:
		fmt.Fprintf(&b, "\nAttendees invited: %s", strings.Join(o.Attendees.Valid, ", "))
		b.WriteString("\nEmail invitations sent to all attendees.")
	}
	return b.String()
}

// Creator creates events from free-text descriptions, inviting the attendees named
// on an "attendees:" or "invite:" line.
type Creator struct {
	backend Backend
	options
}

// NewCreator creates a Creator over the given backend.
func NewCreator(backend Backend, opts ...Option) *Creator {
	return &Creator{backend: backend, options: newOptions(opts)}
}

// Create creates the event described by description. Invalid attendee addresses
// are dropped; the event is still created. Create never returns an error, failures
// are reported through the outcome.
func (c *Creator) Create(ctx context.Context, description string, now time.Time) CreationOutcome {
	if now.IsZero() {
		now = c.clock()
	}
	logger := c.logger.With(logging.Operation("calendar.create"), logging.Calendar(c.calendarID))

	attendees, cleaned := ParseAttendeeLine(description)
	if len(attendees.Invalid) > 0 {
		logger.Warn("dropping invalid attendee addresses", "count", len(attendees.Invalid))
	}

	outcome := c.create(ctx, logger, attendees, cleaned, now)
	outcome.Attendees = attendees
	outcome.loc = now.Location()

	c.recorder.RecordEventCreation(ctx, outcome.Status.String())
	if outcome.Status == OutcomeFailed {
		logger.Warn("event creation failed", "kind", outcome.ErrorKind.String())
	} else {
		logger.Info("event created",
			logging.EventID(outcome.Event.ID),
			logging.Status(outcome.Status.String()),
			"attendees", len(attendees.Valid))
	}
	return outcome
}

func (c *Creator) create(ctx context.Context, logger logging.Logger, attendees AttendeeSet, cleaned string, now time.Time) CreationOutcome {
	if len(attendees.Valid) > 0 {
		created, err := c.insertWithAttendees(ctx, attendees.Valid, ParseEventDetails(cleaned, now))
		if err == nil && created == nil {
			err = errNoEvent
		}
		if err == nil {
			return CreationOutcome{Status: OutcomeCreated, Event: created}
		}
		logger.Warn("insert with attendees failed, falling back to quick add", logging.Err(err))
	}

	text := strings.TrimSpace(cleaned)
	if text == "" {
		text = defaultNewSummary
	}
	base, err := c.backend.QuickAddEvent(ctx, c.calendarID, text)
	if err == nil && base == nil {
		err = errNoEvent
	}
	if err != nil {
		kind := Classify(err)
		return CreationOutcome{Status: OutcomeFailed, ErrorKind: kind, Message: kind.CreateMessage(err)}
	}
	if len(attendees.Valid) == 0 {
		return CreationOutcome{Status: OutcomeCreated, Event: base}
	}

	updated, err := c.attachAttendees(ctx, base, attendees.Valid)
	if err != nil {
		logger.Warn("attaching attendees failed", logging.EventID(base.ID), logging.Err(err))
		return CreationOutcome{Status: OutcomeCreatedWithAttendeeFailure, Event: base, Reason: err}
	}
	if updated == nil {
		updated = base
	}
	return CreationOutcome{Status: OutcomeCreated, Event: updated}
}

func (c *Creator) insertWithAttendees(ctx context.Context, emails []string, d EventDetails) (*Event, error) {
	ev := Event{
		Summary:     d.Summary,
		Description: d.Description,
		Location:    d.Location,
		Start:       EventTime{DateTime: d.Start.Format(time.RFC3339)},
		End:         EventTime{DateTime: d.End.Format(time.RFC3339)},
	}
	invite(&ev, emails)
	ev.UseDefaultReminders = true

	return c.backend.InsertEvent(ctx, InsertEventRequest{
		CalendarID:            c.calendarID,
		Event:                 ev,
		SendUpdates:           sendUpdatesAll,
		ConferenceDataVersion: conferenceDataVersion,
	})
}

// attachAttendees re-reads the event and updates it with the attendees, once.
func (c *Creator) attachAttendees(ctx context.Context, base *Event, emails []string) (*Event, error) {
	if base == nil || base.ID == "" {
		return nil, errMissingEventID
	}
	current, err := c.backend.GetEvent(ctx, c.calendarID, base.ID)
	if err != nil {
		return nil, err
	}
	ev := *current
	invite(&ev, emails)

	return c.backend.UpdateEvent(ctx, UpdateEventRequest{
		CalendarID:  c.calendarID,
		EventID:     base.ID,
		Event:       ev,
		SendUpdates: sendUpdatesAll,
	})
}

// invite sets the attendees and the guest permissions invitations are sent with.
func invite(ev *Event, emails []string) {
	ev.Attendees = make([]Attendee, len(emails))
	for i, email := range emails {
		ev.Attendees[i] = Attendee{Email: email, ResponseStatus: responseNeedsAction}
	}
	yes := true
	ev.GuestsCanInviteOthers = &yes
	ev.GuestsCanModify = false
	ev.GuestsCanSeeOtherGuests = &yes
}
