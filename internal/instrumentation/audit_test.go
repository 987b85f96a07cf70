package instrumentation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/cassandra/internal/logging"
)

func attrMap(attrs []slog.Attr) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Key] = a.Value.String()
	}
	return out
}

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation("calendar_search_events").WithAccount("work")
	assert.False(t, ti.StartTime.IsZero())

	ti.Complete(true, nil)
	assert.True(t, ti.Success)
	assert.Equal(t, StatusSuccess, ti.Status())
	assert.Empty(t, ti.Error)

	ti.Complete(false, errors.New("boom"))
	assert.Equal(t, StatusError, ti.Status())
	assert.Equal(t, "boom", ti.Error)
}

func TestToolInvocation_LogAttrs_HashesAccount(t *testing.T) {
	ti := NewToolInvocation("calendar_create_event").
		WithAccount("jane@example.com").
		WithOutcome("created").
		Complete(true, nil)

	got := attrMap(ti.LogAttrs(false))
	assert.Equal(t, "calendar_create_event", got[logging.KeyTool])
	assert.Equal(t, StatusSuccess, got[logging.KeyStatus])
	assert.Equal(t, "created", got["outcome"])
	assert.Equal(t, logging.AnonymizeEmail("jane@example.com"), got[logging.KeyUserHash])
	assert.NotContains(t, got, logging.KeyAccount)
	assert.NotContains(t, got, logging.KeyError)
}

func TestToolInvocation_LogAttrs_IncludeAccount(t *testing.T) {
	ti := NewToolInvocation("calendar_search_events").
		WithAccount("work").
		Complete(false, errors.New("rate limited"))

	got := attrMap(ti.LogAttrs(true))
	assert.Equal(t, "work", got[logging.KeyAccount])
	assert.Equal(t, "rate limited", got[logging.KeyError])
	assert.NotContains(t, got, logging.KeyUserHash)
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	al := NewAuditLogger(logger, AuditLoggingConfig{Enabled: true})

	al.LogToolInvocation(context.Background(), NewToolInvocation("calendar_current_time").Complete(true, nil))
	assert.Contains(t, buf.String(), "level=INFO msg=tool_executed")

	buf.Reset()
	al.LogToolInvocation(context.Background(), NewToolInvocation("calendar_create_event").Complete(false, errors.New("x")))
	assert.Contains(t, buf.String(), "level=WARN msg=tool_failed")
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewTextHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})

	al.LogToolInvocation(context.Background(), NewToolInvocation("calendar_current_time").Complete(true, nil))
	assert.Empty(t, buf.String())

	var nilLogger *AuditLogger
	assert.NotPanics(t, func() {
		nilLogger.LogToolInvocation(context.Background(), NewToolInvocation("x"))
	})
}
