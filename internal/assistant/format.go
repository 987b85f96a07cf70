package assistant

import (
	"fmt"
	"strings"
	"time"
)

const (
	eventSeparator  = "\n\n---\n\n"
	eventDateLayout = "Mon, Jan 2, 2006"
	clockLayout     = "3:04 PM"
	// Creation confirmations name the zone, as the event may sit in another one.
	createStartLayout = "Mon, Jan 2, 3:04 PM MST"
	createEndLayout   = "3:04 PM MST"

	defaultSummary   = "No title"
	timeNotSpecified = "Time not specified"
)

// FormatSearchResult renders a search result as reply text, headed by the
// current time block. Times are shown in now's location.
func FormatSearchResult(res SearchResult, now time.Time) string {
	var b strings.Builder
	b.WriteString(CurrentTimeInfo(now))
	b.WriteString("\n\n")

	switch {
	case len(res.Events) > 0:
		noun := "events"
		if len(res.Events) == 1 {
			noun = "event"
		}
		if res.Kind == QueryCurrentMoment {
			fmt.Fprintf(&b, "Found %d %s around the current time:\n\n", len(res.Events), noun)
		} else {
			fmt.Fprintf(&b, "Found %d %s matching %q:\n\n", len(res.Events), noun, res.Query)
		}
		blocks := make([]string, len(res.Events))
		for i, e := range res.Events {
			blocks[i] = FormatEvent(e, now.Location())
		}
		b.WriteString(strings.Join(blocks, eventSeparator))
	case res.Kind == QueryCurrentMoment:
		b.WriteString("No events found around the current time.")
	default:
		fmt.Fprintf(&b, "No events found matching %q.", res.Query)
	}

	if len(res.Errors) > 0 {
		b.WriteString("\n\nErrors encountered:")
		for _, e := range res.Errors {
			b.WriteString("\n- ")
			b.WriteString(e.Message)
		}
	}

	if res.SingleWord() {
		b.WriteString("\n\n")
		if len(res.Events) == 0 {
			fmt.Fprintf(&b, "Note: I searched for %q using multiple variations (%s), but couldn't find any matching events in your calendar. Try using a different keyword or check if the event exists.",
				res.Query, strings.Join(res.Variants, ", "))
		} else {
			fmt.Fprintf(&b, "Note: I found these events by searching for variations of %q across a wide date range.", res.Query)
		}
	}
	return b.String()
}

// FormatSearchFailure renders the reply for a search that never reached the
// backend, for example because no credential could be obtained.
func FormatSearchFailure(err error, now time.Time) string {
	return CurrentTimeInfo(now) + "\n\n" + Classify(err).SearchMessage()
}

// FormatEvent renders one event: the date and time line, the summary, then the
// optional location and attendee lines.
func FormatEvent(e Event, loc *time.Location) string {
	lines := []string{formatWhen(e, loc)}

	summary := e.Summary
	if summary == "" {
		summary = defaultSummary
	}
	lines = append(lines, summary)

	if e.Location != "" {
		lines = append(lines, "Location: "+e.Location)
	}
	if len(e.Attendees) > 0 {
		names := make([]string, len(e.Attendees))
		for i, a := range e.Attendees {
			names[i] = a.Label()
		}
		lines = append(lines, "Attendees: "+strings.Join(names, ", "))
	}
	return strings.Join(lines, "\n")
}

func formatWhen(e Event, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	start, ok := e.Start.Instant(loc)
	if !ok {
		return timeNotSpecified
	}
	start = start.In(loc)
	if e.Start.IsAllDay() {
		return start.Format(eventDateLayout) + " All day"
	}

	when := start.Format(eventDateLayout) + " " + start.Format(clockLayout)
	if end, ok := e.End.Instant(loc); ok {
		when += " - " + end.In(loc).Format(clockLayout)
	}
	return when
}

// formatCreatedTime renders the time line of a creation confirmation.
func formatCreatedTime(start, end EventTime, loc *time.Location) string {
	s, okStart := start.Instant(loc)
	e, okEnd := end.Instant(loc)
	if !okStart || !okEnd {
		return timeNotSpecified
	}
	if loc != nil {
		s, e = s.In(loc), e.In(loc)
	}
	return s.Format(createStartLayout) + " - " + e.Format(createEndLayout)
}
