package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/cassandra/internal/google"
	"github.com/teemow/cassandra/internal/server"
)

func TestParseCommaSeparatedList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single value",
			input:    "primary",
			expected: []string{"primary"},
		},
		{
			name:     "multiple values",
			input:    "primary,team@group.calendar.google.com",
			expected: []string{"primary", "team@group.calendar.google.com"},
		},
		{
			name:     "values with spaces around comma",
			input:    "primary, holidays",
			expected: []string{"primary", "holidays"},
		},
		{
			name:     "values with leading/trailing spaces",
			input:    "  primary  ,  holidays  ",
			expected: []string{"primary", "holidays"},
		},
		{
			name:     "trailing comma",
			input:    "primary,holidays,",
			expected: []string{"primary", "holidays"},
		},
		{
			name:     "leading comma",
			input:    ",primary,holidays",
			expected: []string{"primary", "holidays"},
		},
		{
			name:     "multiple consecutive commas",
			input:    "primary,,holidays",
			expected: []string{"primary", "holidays"},
		},
		{
			name:     "only commas and spaces",
			input:    ",  , , ",
			expected: nil,
		},
		{
			name:     "discover keyword",
			input:    " all ",
			expected: []string{"all"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseCommaSeparatedList(tt.input))
		})
	}
}

func newToolTestContext(t *testing.T, readOnly bool) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), server.Config{
		TokenProvider: google.NewStaticTokenProvider(""),
		ReadOnly:      readOnly,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestRegisterAllTools(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		want     []string
		absent   []string
	}{
		{
			name: "write mode",
			want: []string{
				"calendar_search_events",
				"calendar_get_events",
				"calendar_create_event",
				"calendar_current_time",
				"calendar_list_calendars",
				"google_get_auth_url",
				"google_save_auth_code",
			},
		},
		{
			name:     "read-only mode",
			readOnly: true,
			want:     []string{"calendar_search_events", "calendar_current_time", "google_get_auth_url"},
			absent:   []string{"calendar_create_event"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mcpSrv := newMCPServer()
			require.NoError(t, registerAllTools(mcpSrv, newToolTestContext(t, tt.readOnly)))

			tools := mcpSrv.ListTools()
			for _, name := range tt.want {
				assert.Contains(t, tools, name)
			}
			for _, name := range tt.absent {
				assert.NotContains(t, tools, name)
			}
		})
	}
}
