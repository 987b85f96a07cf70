package assistant

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// attendeePrefixes start the line listing people to invite.
var attendeePrefixes = []string{"attendees:", "invite:"}

// AttendeeSet is the parsed attendee line of a creation request.
type AttendeeSet struct {
	// Candidates are the non-empty, trimmed comma-separated entries.
	Candidates []string
	Valid      []string
	Invalid    []string
}

// IsValidEmail checks the local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ParseAttendeeLine finds the first line starting with "attendees:" or "invite:"
// (any case), parses its addresses and returns the description without that line.
// When no such line exists the description is returned unchanged.
func ParseAttendeeLine(description string) (AttendeeSet, string) {
	lines := strings.Split(description, "\n")
	for i, line := range lines {
		rest, ok := cutPrefixFold(strings.TrimSpace(line), attendeePrefixes...)
		if !ok {
			continue
		}

		var set AttendeeSet
		for _, entry := range strings.Split(rest, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			set.Candidates = append(set.Candidates, entry)
			if IsValidEmail(entry) {
				set.Valid = append(set.Valid, entry)
			} else {
				set.Invalid = append(set.Invalid, entry)
			}
		}

		cleaned := append(lines[:i:i], lines[i+1:]...)
		return set, strings.Join(cleaned, "\n")
	}
	return AttendeeSet{}, description
}

// EventDetails are the fields read directly from a creation request.
type EventDetails struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

const defaultNewSummary = "New Event"

// ParseEventDetails reads the summary (first line), a "location:" line and a
// "description:" or "notes:" line. Start is the next full hour after now and the
// event lasts one hour; real date parsing is left to the backend's quick add.
func ParseEventDetails(description string, now time.Time) EventDetails {
	lines := strings.Split(description, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	d := EventDetails{Summary: lines[0]}
	if d.Summary == "" {
		d.Summary = defaultNewSummary
	}
	for _, line := range lines {
		if rest, ok := cutPrefixFold(line, "location:"); ok {
			d.Location = strings.TrimSpace(rest)
		} else if rest, ok := cutPrefixFold(line, "description:", "notes:"); ok {
			d.Description = strings.TrimSpace(rest)
		}
	}

	y, m, day := now.Date()
	d.Start = time.Date(y, m, day, now.Hour()+1, 0, 0, 0, now.Location())
	d.End = d.Start.Add(time.Hour)
	return d
}

// cutPrefixFold reports whether s starts with one of the prefixes, ignoring case,
// and returns the remainder after it.
func cutPrefixFold(s string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return s[len(p):], true
		}
	}
	return "", false
}
