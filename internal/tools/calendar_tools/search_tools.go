package calendar_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/cassandra/internal/assistant"
	"github.com/teemow/cassandra/internal/logging"
	"github.com/teemow/cassandra/internal/server"
	"github.com/teemow/cassandra/internal/tools/common"
)

const searchEventsToolName = "calendar_search_events"

// RegisterSearchTools registers the event search tool with the MCP server
func RegisterSearchTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	searchTool := mcp.NewTool(searchEventsToolName,
		mcp.WithDescription("Search calendar events by name, keyword or time. "+
			"Short queries are expanded into spelling variations (case, spacing, company suffixes) and "+
			"the time window is inferred from words like 'today', 'next week' or 'this month'. "+
			"Queries about 'now' return what is happening around the current time."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What to look for, e.g. 'Acme', 'standup tomorrow', 'what am I doing now'"),
		),
		mcp.WithString("mode",
			mcp.Description("Time window policy: 'precise' (calendar-aligned, default) or 'padded' (extends the window forward)"),
			mcp.Enum(assistant.StrategyPrecise, assistant.StrategyPadded),
		),
		mcp.WithString("calendarIds",
			mcp.Description("Comma-separated calendar IDs to search, 'all' for every calendar. Defaults to the configured calendars."),
		),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)

	s.AddTool(searchTool, common.InstrumentedToolHandler(searchEventsToolName, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEvents(ctx, request, sc)
		}))

	return nil
}

func handleSearchEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	query, ok := args["query"].(string)
	if !ok {
		return mcp.NewToolResultError("query is required"), nil
	}

	mode, _ := args["mode"].(string)
	strategy, err := assistant.ParseWindowStrategy(mode)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid mode: %v", err)), nil
	}

	svc, reply := getCalendarService(ctx, account, sc)
	if reply != nil {
		return reply, nil
	}

	now := sc.Now()
	calendarIDs, err := sc.CalendarIDs(ctx, svc, common.GetStringSliceFromArgs(args, "calendarIds"))
	if err != nil {
		return mcp.NewToolResultText(assistant.FormatSearchFailure(err, now)), nil
	}

	logger := logging.WithTool(sc.Logger(), searchEventsToolName)
	res := sc.Searcher(svc, logger).Search(ctx, assistant.SearchRequest{
		Query:       query,
		Now:         now,
		CalendarIDs: calendarIDs,
		Strategy:    strategy,
	})
	common.SetOutcome(ctx, res.Kind.String())

	return mcp.NewToolResultText(assistant.FormatSearchResult(res, now)), nil
}
