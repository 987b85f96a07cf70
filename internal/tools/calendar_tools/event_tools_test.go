package calendar_tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/cassandra/internal/assistant"
	"github.com/teemow/cassandra/internal/tools/batch"
)

func TestHandleGetEvents(t *testing.T) {
	sc := newTestServerContext(t, false)
	fake := &fakeService{
		events: map[string][]assistant.Event{
			"team@example.com": {{
				ID:       "evt-1",
				Summary:  "Planning",
				Location: "Room 4",
				Start:    assistant.EventTime{DateTime: "2024-01-16T14:00:00Z"},
				End:      assistant.EventTime{DateTime: "2024-01-16T15:00:00Z"},
			}},
		},
		getErrs: map[string]error{"gone": errors.New("googleapi: Error 404: Not Found, notFound")},
	}
	sc.SetCalendarServiceForAccount("default", fake)

	result, err := handleGetEvents(context.Background(), callRequest(map[string]any{
		"eventIds":   []any{"evt-1", "gone"},
		"calendarId": "team@example.com",
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var br batch.BatchResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &br))
	assert.Equal(t, 2, br.Total)
	assert.Equal(t, 1, br.Successful)
	assert.Equal(t, 1, br.Failed)

	require.Len(t, br.Results, 2)
	assert.Equal(t, "evt-1", br.Results[0].ID)
	assert.Equal(t, "Tue, Jan 16, 2024 2:00 PM - 3:00 PM\nPlanning\nLocation: Room 4", br.Results[0].Result)
	assert.Equal(t, "gone", br.Results[1].ID)
	assert.Equal(t, batch.StatusError, br.Results[1].Status)
	assert.Contains(t, br.Results[1].Error, "not_found")
}

func TestHandleGetEvents_DefaultCalendar(t *testing.T) {
	sc := newTestServerContext(t, false)
	fake := &fakeService{events: map[string][]assistant.Event{
		"primary": {{ID: "evt-9", Summary: "Dentist"}},
	}}
	sc.SetCalendarServiceForAccount("default", fake)

	result, err := handleGetEvents(context.Background(), callRequest(map[string]any{"eventIds": "evt-9"}), sc)
	require.NoError(t, err)

	var br batch.BatchResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &br))
	require.Len(t, br.Results, 1)
	assert.Equal(t, "Time not specified\nDentist", br.Results[0].Result)
}

func TestHandleGetEvents_InvalidArguments(t *testing.T) {
	sc := newTestServerContext(t, false)
	sc.SetCalendarServiceForAccount("default", &fakeService{})

	result, err := handleGetEvents(context.Background(), callRequest(map[string]any{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "eventIds is required")
}

func TestHandleGetEvents_NoToken(t *testing.T) {
	sc := newTestServerContext(t, false)

	result, err := handleGetEvents(context.Background(), callRequest(map[string]any{"eventIds": "evt-1"}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Calendar access is not authorized yet")
}
