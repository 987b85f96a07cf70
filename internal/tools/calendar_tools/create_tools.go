package calendar_tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/cassandra/internal/assistant"
	"github.com/teemow/cassandra/internal/logging"
	"github.com/teemow/cassandra/internal/server"
	"github.com/teemow/cassandra/internal/tools/common"
)

const createEventToolName = "calendar_create_event"

// RegisterCreateTools registers the event creation tool with the MCP server
func RegisterCreateTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	createTool := mcp.NewTool(createEventToolName,
		mcp.WithDescription("Create a calendar event from a natural-language description, e.g. "+
			"'Lunch with Sam tomorrow at noon'. Add a line 'attendees: a@example.com, b@example.com' "+
			"(or 'invite: ...') to send invitations. Invalid addresses are skipped."),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What, when and optionally where, plus an optional attendees line"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar to create the event in (default: 'primary')"),
		),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)

	s.AddTool(createTool, common.InstrumentedToolHandler(createEventToolName, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	return nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.ReadOnly() {
		return mcp.NewToolResultError("Event creation is disabled: the server runs in read-only mode"), nil
	}

	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	description, _ := args["description"].(string)
	if strings.TrimSpace(description) == "" {
		return mcp.NewToolResultError("description is required"), nil
	}
	calendarID, _ := args["calendarId"].(string)

	svc, reply := getCalendarService(ctx, account, sc)
	if reply != nil {
		return reply, nil
	}

	logger := logging.WithTool(sc.Logger(), createEventToolName)
	outcome := sc.Creator(svc, logger, assistant.WithCalendarID(calendarID)).Create(ctx, description, sc.Now())
	common.SetOutcome(ctx, outcome.Status.String())

	if !outcome.Created() {
		return mcp.NewToolResultError(outcome.String()), nil
	}
	return mcp.NewToolResultText(outcome.String()), nil
}
