package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/cassandra/internal/logging"
)

// ToolInvocation captures one MCP tool call for the audit log.
//
// Account names are often email addresses. They are hashed in the audit log
// unless AuditLoggingConfig.IncludeAccount is set.
type ToolInvocation struct {
	Tool    string
	Account string

	// Outcome is a tool-specific result label such as "created" or
	// "created_with_attendee_failure". Optional.
	Outcome string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
}

// NewToolInvocation starts timing a tool invocation.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithAccount sets the Google account name.
func (ti *ToolInvocation) WithAccount(account string) *ToolInvocation {
	ti.Account = account
	return ti
}

// WithOutcome sets the tool-specific outcome label.
func (ti *ToolInvocation) WithOutcome(outcome string) *ToolInvocation {
	ti.Outcome = outcome
	return ti
}

// WithSpanContext copies the trace ID of the span in ctx.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	return ti
}

// Complete stops the clock and records the result.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// Status returns StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns the audit attributes. The account is hashed unless
// includeAccount is true.
func (ti *ToolInvocation) LogAttrs(includeAccount bool) []slog.Attr {
	attrs := []slog.Attr{
		logging.Tool(ti.Tool),
		slog.Duration(logging.KeyDuration, ti.Duration),
		logging.Status(ti.Status()),
	}

	if ti.Account != "" {
		if includeAccount {
			attrs = append(attrs, logging.Account(ti.Account))
		} else {
			attrs = append(attrs, logging.UserHash(ti.Account))
		}
	}
	if ti.Outcome != "" {
		attrs = append(attrs, slog.String("outcome", ti.Outcome))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String(logging.KeyError, ti.Error))
	}

	return attrs
}

// AuditLogger writes one record per tool invocation.
type AuditLogger struct {
	logger         *slog.Logger
	includeAccount bool
	enabled        bool
}

// NewAuditLogger creates an AuditLogger. A nil logger means slog.Default().
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:         logger,
		includeAccount: config.IncludeAccount,
		enabled:        config.Enabled,
	}
}

// LogToolInvocation logs ti at info level on success and warn level otherwise.
// A nil or disabled AuditLogger does nothing.
func (al *AuditLogger) LogToolInvocation(ctx context.Context, ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	level := slog.LevelInfo
	msg := "tool_executed"
	if !ti.Success {
		level = slog.LevelWarn
		msg = "tool_failed"
	}
	al.logger.LogAttrs(ctx, level, msg, ti.LogAttrs(al.includeAccount)...)
}
