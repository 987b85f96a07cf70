package calendar_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/cassandra/internal/assistant"
	"github.com/teemow/cassandra/internal/server"
	"github.com/teemow/cassandra/internal/tools/batch"
	"github.com/teemow/cassandra/internal/tools/common"
)

const getEventsToolName = "calendar_get_events"

// RegisterEventTools registers the event lookup tool with the MCP server
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getEventsTool := mcp.NewTool(getEventsToolName,
		mcp.WithDescription("Get one or more calendar events by ID, for example to show the details of an event "+
			"found earlier. Returns a JSON summary with one entry per event; missing events are reported individually."),
		mcp.WithString("eventIds",
			mcp.Required(),
			mcp.Description("Event ID, or a JSON array of event IDs (at most 50)"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar the events belong to (default: 'primary')"),
		),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)

	s.AddTool(getEventsTool, common.InstrumentedToolHandler(getEventsToolName, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEvents(ctx, request, sc)
		}))

	return nil
}

func handleGetEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	eventIDs, err := batch.ParseStringOrArray(args["eventIds"], "eventIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	calendarID, _ := args["calendarId"].(string)
	if calendarID == "" {
		calendarID = assistant.DefaultCalendarID
	}

	svc, reply := getCalendarService(ctx, account, sc)
	if reply != nil {
		return reply, nil
	}

	loc := sc.Location()
	results := batch.ProcessBatch(ctx, eventIDs, sc.Concurrency(), func(ctx context.Context, id string) (string, error) {
		event, err := svc.GetEvent(ctx, calendarID, id)
		if err != nil {
			return "", fmt.Errorf("%s: %w", assistant.Classify(err), err)
		}
		return assistant.FormatEvent(*event, loc), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
