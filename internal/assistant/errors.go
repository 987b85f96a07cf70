package assistant

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// ErrorKind classifies a backend failure for user-facing messaging.
type ErrorKind int

const (
	BackendUnavailable ErrorKind = iota
	AuthFailure
	PermissionDenied
	RateLimited
	NotFound
	InvalidInput
)

var errorKindNames = map[ErrorKind]string{
	BackendUnavailable: "backend_unavailable",
	AuthFailure:        "auth_failure",
	PermissionDenied:   "permission_denied",
	RateLimited:        "rate_limited",
	NotFound:           "not_found",
	InvalidInput:       "invalid_input",
}

// String returns a low-cardinality label, suitable for metrics.
func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return errorKindNames[BackendUnavailable]
}

// classifyRules are matched against the lower-cased error text; first match wins.
var classifyRules = []struct {
	kind    ErrorKind
	phrases []string
}{
	{InvalidInput, []string{"invalid email"}},
	{PermissionDenied, []string{"permission", "scope", "insufficient"}},
	{RateLimited, []string{"rate limit", "quota"}},
	{AuthFailure, []string{"authentication", "token", "unauthenticated"}},
	{NotFound, []string{"not found"}},
}

// Classify maps an error to an ErrorKind. Wording decides first, since it is what the
// user sees echoed back. An unrecognized *googleapi.Error falls back to its HTTP code.
func Classify(err error) ErrorKind {
	if err == nil {
		return BackendUnavailable
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range classifyRules {
		if containsAny(msg, rule.phrases) {
			return rule.kind
		}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return AuthFailure
		case http.StatusForbidden:
			return PermissionDenied
		case http.StatusNotFound, http.StatusGone:
			return NotFound
		case http.StatusTooManyRequests:
			return RateLimited
		case http.StatusBadRequest:
			return InvalidInput
		}
	}
	return BackendUnavailable
}

// SearchMessage is the reply given when a search could not reach the calendar at all.
func (k ErrorKind) SearchMessage() string {
	switch k {
	case AuthFailure:
		return "I encountered an authentication issue when searching your calendar. Please try logging out and back in to refresh your access."
	case PermissionDenied:
		return "I don't have sufficient permissions to search your calendar. Please check your Google Calendar permissions."
	case RateLimited:
		return "I've hit a rate limit when searching your calendar. Please try again in a moment."
	case NotFound:
		return "I couldn't find the calendar to search. Please check the configured calendar IDs."
	default:
		return "I encountered an issue when searching your calendar. Please try again with a more specific query."
	}
}

// CreateMessage is the reply given when creating an event failed. The raw error
// text is only echoed for unclassified failures.
func (k ErrorKind) CreateMessage(err error) string {
	switch k {
	case InvalidInput:
		return "Error: One or more attendee email addresses are invalid. Please check the email addresses and try again."
	case PermissionDenied:
		return "Error: You don't have permission to create events in this calendar."
	case RateLimited:
		return "Error: Calendar quota exceeded. Please try again later."
	case AuthFailure:
		return "Error: Authentication failed. Please ensure you're logged in with Google Calendar access."
	default:
		detail := "unknown error"
		if err != nil {
			detail = err.Error()
		}
		return "Error creating calendar event: " + detail + ". Please check the event details and try again."
	}
}
