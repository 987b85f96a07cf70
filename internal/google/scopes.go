package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// DefaultOAuthScopes are the Google OAuth scopes cassandra requests.
//
// Searching needs read access to events and the calendar list; creating events
// and attaching attendees needs write access, so the full calendar scope is used.
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	calendar.CalendarScope,
}

// ReadOnlyOAuthScopes are requested when the server runs with --read-only.
var ReadOnlyOAuthScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	calendar.CalendarReadonlyScope,
}
