package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/cassandra/internal/instrumentation"
	"github.com/teemow/cassandra/internal/server"
)

// ToolHandler is the signature of an MCP tool handler.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

type outcomeKey struct{}

// SetOutcome records a tool-specific result label, such as the creation
// status, for the audit log of the current invocation. It is a no-op outside
// InstrumentedToolHandler.
func SetOutcome(ctx context.Context, outcome string) {
	if p, ok := ctx.Value(outcomeKey{}).(*string); ok {
		*p = outcome
	}
}

// InstrumentedToolHandler wraps a tool handler with a tracing span, metrics
// and audit logging.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		account := GetAccountFromArgs(ctx, request.GetArguments())

		ctx, span := instrumentation.StartToolSpan(ctx, toolName,
			instrumentation.NewSpanAttributeBuilder().
				WithAccount(account).
				WithReadOnly(sc.ReadOnly()).
				Build()...)

		var outcome string
		ctx = context.WithValue(ctx, outcomeKey{}, &outcome)

		invocation := instrumentation.NewToolInvocation(toolName).
			WithAccount(account).
			WithSpanContext(ctx)
		start := time.Now()

		result, err := handler(ctx, request)

		failure := err
		if failure == nil && result != nil && result.IsError {
			failure = errors.New(resultText(result))
		}
		invocation.WithOutcome(outcome).Complete(failure == nil, failure)
		instrumentation.EndSpan(span, failure)

		sc.Metrics().RecordToolInvocation(ctx, toolName, invocation.Status(), account, time.Since(start))
		sc.AuditLogger().LogToolInvocation(ctx, invocation)

		return result, err
	}
}

// resultText returns the first text content of a result.
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return "tool returned an error"
}
