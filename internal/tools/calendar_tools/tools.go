package calendar_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/cassandra/internal/assistant"
	"github.com/teemow/cassandra/internal/google"
	"github.com/teemow/cassandra/internal/server"
)

const accountDescription = "Account name (default: 'default'). Used to manage multiple Google accounts."

// getCalendarService retrieves the calendar service for the account. When the
// account has no token, the second return is the reply to send instead: an
// authorization hint headed by the current time, so the assistant can still
// answer time questions.
func getCalendarService(ctx context.Context, account string, sc *server.ServerContext) (server.CalendarService, *mcp.CallToolResult) {
	svc, err := sc.CalendarServiceForRequest(ctx, account)
	if err == nil {
		return svc, nil
	}
	if errors.Is(err, google.ErrNoToken) {
		return nil, mcp.NewToolResultText(authorizationHint(account, sc))
	}
	return nil, mcp.NewToolResultError(assistant.FormatSearchFailure(err, sc.Now()))
}

// authorizationHint is the reduced-capability reply for an account without a token.
func authorizationHint(account string, sc *server.ServerContext) string {
	var b strings.Builder
	b.WriteString(assistant.CurrentTimeInfo(sc.Now()))
	b.WriteString("\n\nCalendar access is not authorized yet, so I can only answer questions about the current time.\n")
	b.WriteString(google.GetAuthenticationErrorMessage(account))

	if authURL, err := google.GetAuthURL(sc.OAuthConfig(), account); err == nil {
		fmt.Fprintf(&b, "\n\nAuthorization URL:\n%s", authURL)
	}
	return b.String()
}

// RegisterCalendarTools registers all Calendar-related tools with the MCP server.
// calendar_create_event is left out in read-only mode.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterSearchTools(s, sc); err != nil {
		return fmt.Errorf("failed to register search tools: %w", err)
	}

	if err := RegisterEventTools(s, sc); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	if err := RegisterTimeTools(s, sc); err != nil {
		return fmt.Errorf("failed to register time tools: %w", err)
	}

	if err := RegisterCalendarListTools(s, sc); err != nil {
		return fmt.Errorf("failed to register calendar list tools: %w", err)
	}

	if !sc.ReadOnly() {
		if err := RegisterCreateTools(s, sc); err != nil {
			return fmt.Errorf("failed to register create tools: %w", err)
		}
	}

	return nil
}
