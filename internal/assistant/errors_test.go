package assistant

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, BackendUnavailable},
		{"invalid email", errors.New("Invalid email: foo"), InvalidInput},
		{"permission", errors.New("insufficient permission"), PermissionDenied},
		{"scope", errors.New("missing scope calendar.events"), PermissionDenied},
		{"insufficient scopes", errors.New("Request had insufficient authentication scopes"), PermissionDenied},
		{"rate limit", errors.New("rate limit exceeded"), RateLimited},
		{"quota", errors.New("Quota exceeded for quota metric"), RateLimited},
		{"token", errors.New("oauth2: token expired and refresh token is not set"), AuthFailure},
		{"authentication", errors.New("Authentication failed"), AuthFailure},
		{"unauthenticated", errors.New("UNAUTHENTICATED"), AuthFailure},
		{"not found", errors.New("calendar not found"), NotFound},
		{"wrapped", fmt.Errorf("listing events: %w", errors.New("rate limit exceeded")), RateLimited},
		{"no credential", errors.New("no Google OAuth token found for account default"), AuthFailure},
		{"generic", errors.New("connection reset by peer"), BackendUnavailable},
		{"api 401", &googleapi.Error{Code: 401}, AuthFailure},
		{"api 403", &googleapi.Error{Code: 403}, PermissionDenied},
		{"api 404", &googleapi.Error{Code: 404}, NotFound},
		{"api 410", &googleapi.Error{Code: 410}, NotFound},
		{"api 429", &googleapi.Error{Code: 429}, RateLimited},
		{"api 400", &googleapi.Error{Code: 400}, InvalidInput},
		{"api 500", &googleapi.Error{Code: 500}, BackendUnavailable},
		{"wrapped api", fmt.Errorf("get event: %w", &googleapi.Error{Code: 404}), NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "auth_failure", AuthFailure.String())
	assert.Equal(t, "rate_limited", RateLimited.String())
	assert.Equal(t, "backend_unavailable", ErrorKind(99).String())
}

func TestSearchMessage(t *testing.T) {
	assert.Contains(t, AuthFailure.SearchMessage(), "log")
	assert.Contains(t, PermissionDenied.SearchMessage(), "permissions")
	assert.Contains(t, RateLimited.SearchMessage(), "rate limit")
	assert.Contains(t, BackendUnavailable.SearchMessage(), "more specific query")
	assert.Contains(t, InvalidInput.SearchMessage(), "more specific query")
}

func TestCreateMessage_Generic(t *testing.T) {
	assert.Equal(t,
		"Error creating calendar event: unknown error. Please check the event details and try again.",
		BackendUnavailable.CreateMessage(nil))
	assert.Equal(t,
		"Error creating calendar event: calendar not found. Please check the event details and try again.",
		NotFound.CreateMessage(errors.New("calendar not found")))
}
