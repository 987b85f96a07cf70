package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    []string
		wantErr string
	}{
		{
			name:  "single string",
			input: "evt123",
			want:  []string{"evt123"},
		},
		{
			name:  "array of strings",
			input: []any{"id1", "id2", "id3"},
			want:  []string{"id1", "id2", "id3"},
		},
		{
			name:  "typed string slice",
			input: []string{"id1", "id2"},
			want:  []string{"id1", "id2"},
		},
		{
			name:    "nil input",
			input:   nil,
			wantErr: "eventIds is required",
		},
		{
			name:    "empty string",
			input:   "  ",
			wantErr: "eventIds cannot be empty",
		},
		{
			name:    "empty array",
			input:   []any{},
			wantErr: "eventIds cannot be empty",
		},
		{
			name:    "array with non-string",
			input:   []any{"id1", 123, "id3"},
			wantErr: "eventIds[1] must be a string",
		},
		{
			name:    "array with empty string",
			input:   []any{"id1", "", "id3"},
			wantErr: "eventIds[1] cannot be empty",
		},
		{
			name:    "invalid type",
			input:   123,
			wantErr: "must be a string or array of strings",
		},
		{
			name:  "JSON string array",
			input: `["id1", "id2", "id3"]`,
			want:  []string{"id1", "id2", "id3"},
		},
		{
			name:    "JSON string empty array",
			input:   `[]`,
			wantErr: "eventIds cannot be empty",
		},
		{
			name:  "invalid JSON string",
			input: `[invalid json`,
			want:  []string{`[invalid json`},
		},
		{
			name:  "string starting with bracket (not JSON)",
			input: `[draft] planning`,
			want:  []string{`[draft] planning`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.input, "eventIds")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStringOrArray_TooMany(t *testing.T) {
	ids := make([]any, MaxItems+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("evt-%d", i)
	}

	_, err := ParseStringOrArray(ids, "eventIds")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 50")
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		NewSuccessResult("id1", "Operation successful"),
		NewSuccessResult("id2", "Operation successful"),
		NewErrorResult("id3", errors.New("Something went wrong")),
	}

	var br BatchResult
	require.NoError(t, json.Unmarshal([]byte(FormatResults(results)), &br))

	assert.Equal(t, 3, br.Total)
	assert.Equal(t, 2, br.Successful)
	assert.Equal(t, 1, br.Failed)
	assert.Equal(t, results, br.Results)
}

func TestProcessBatch(t *testing.T) {
	ids := []string{"id1", "id2", "id3", "id4"}

	var inFlight, maxInFlight atomic.Int32
	fn := func(_ context.Context, id string) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := maxInFlight.Load()
			if n <= old || maxInFlight.CompareAndSwap(old, n) {
				break
			}
		}
		if id == "id2" {
			return "", errors.New("failed to process id2")
		}
		return "processed " + id, nil
	}

	results := ProcessBatch(context.Background(), ids, 2, fn)

	require.Len(t, results, 4)
	assert.Equal(t, NewSuccessResult("id1", "processed id1"), results[0])
	assert.Equal(t, NewErrorResult("id2", errors.New("failed to process id2")), results[1])
	assert.Equal(t, NewSuccessResult("id3", "processed id3"), results[2])
	assert.Equal(t, NewSuccessResult("id4", "processed id4"), results[3])
	assert.LessOrEqual(t, maxInFlight.Load(), int32(2))
}

func TestNewResults(t *testing.T) {
	ok := NewSuccessResult("test-id", "test message")
	assert.Equal(t, Result{ID: "test-id", Status: StatusSuccess, Result: "test message"}, ok)

	failed := NewErrorResult("test-id", errors.New("test error"))
	assert.Equal(t, Result{ID: "test-id", Status: StatusError, Error: "test error"}, failed)
}
