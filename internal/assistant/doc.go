// Package assistant is the calendar reasoning core behind cassandra's tools.
//
// Given a short natural-language fragment ("sendblue", "meeting tomorrow", "where am I")
// it expands the text into name variants, infers a search window from temporal
// keywords, fans the search out over calendars and variants, and merges the results
// into a deduplicated, start-ordered list. A separate Creator turns a free-text
// description into an event and invites the attendees it names.
//
// Everything time-dependent takes the reference time as a parameter. Calendar
// access goes through the Backend interface; internal/calendar implements it on
// the Google Calendar API.
//
// Two window strategies exist for the same keywords. PreciseCalendarWindow aligns
// to calendar days, weeks and months and is the default. PaddedKeywordWindow pads
// the end of the window for keyword-style lookups.
package assistant
