package calendar

import (
	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/cassandra/internal/assistant"
)

// CalendarInfo describes a calendar in the user's calendar list.
type CalendarInfo struct {
	ID          string
	Summary     string
	Description string
	TimeZone    string
	AccessRole  string // "freeBusyReader", "reader", "writer", "owner"
	Primary     bool
	Selected    bool
}

// CanWrite reports whether events can be created in the calendar.
func (c CalendarInfo) CanWrite() bool {
	return c.AccessRole == "writer" || c.AccessRole == "owner"
}

func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		AccessRole:  entry.AccessRole,
		Primary:     entry.Primary,
		Selected:    entry.Selected,
	}
}

// toEvent converts an API event. Cancelled instances keep their ID so they can
// still be deduplicated against the live copy.
func toEvent(event *calendar.Event) assistant.Event {
	if event == nil {
		return assistant.Event{}
	}

	e := assistant.Event{
		ID:                      event.Id,
		Summary:                 event.Summary,
		Description:             event.Description,
		Location:                event.Location,
		Start:                   toEventTime(event.Start),
		End:                     toEventTime(event.End),
		HTMLLink:                event.HtmlLink,
		GuestsCanInviteOthers:   event.GuestsCanInviteOthers,
		GuestsCanModify:         event.GuestsCanModify,
		GuestsCanSeeOtherGuests: event.GuestsCanSeeOtherGuests,
	}
	if event.Reminders != nil {
		e.UseDefaultReminders = event.Reminders.UseDefault
	}
	for _, a := range event.Attendees {
		if a == nil {
			continue
		}
		e.Attendees = append(e.Attendees, assistant.Attendee{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: a.ResponseStatus,
		})
	}
	return e
}

func toEventTime(t *calendar.EventDateTime) assistant.EventTime {
	if t == nil {
		return assistant.EventTime{}
	}
	return assistant.EventTime{DateTime: t.DateTime, Date: t.Date, TimeZone: t.TimeZone}
}

// fromEvent builds the API representation used for inserts and updates.
func fromEvent(e assistant.Event) *calendar.Event {
	event := &calendar.Event{
		Id:                      e.ID,
		Summary:                 e.Summary,
		Description:             e.Description,
		Location:                e.Location,
		Start:                   fromEventTime(e.Start),
		End:                     fromEventTime(e.End),
		GuestsCanInviteOthers:   e.GuestsCanInviteOthers,
		GuestsCanModify:         e.GuestsCanModify,
		GuestsCanSeeOtherGuests: e.GuestsCanSeeOtherGuests,
	}
	if e.UseDefaultReminders {
		event.Reminders = &calendar.EventReminders{UseDefault: true}
	}
	for _, a := range e.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: a.ResponseStatus,
		})
	}
	return event
}

func fromEventTime(t assistant.EventTime) *calendar.EventDateTime {
	if t == (assistant.EventTime{}) {
		return nil
	}
	return &calendar.EventDateTime{DateTime: t.DateTime, Date: t.Date, TimeZone: t.TimeZone}
}
