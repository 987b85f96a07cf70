package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/cassandra/internal/assistant"
	"github.com/teemow/cassandra/internal/server"
	"github.com/teemow/cassandra/internal/tools/common"
)

const currentTimeToolName = "calendar_current_time"

// RegisterTimeTools registers the current time tool. It needs no Google token.
func RegisterTimeTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	timeTool := mcp.NewTool(currentTimeToolName,
		mcp.WithDescription("Get the current date, time and timezone. Use it before reasoning about relative dates."),
	)

	s.AddTool(timeTool, common.InstrumentedToolHandler(currentTimeToolName, sc,
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(assistant.CurrentTimeInfo(sc.Now())), nil
		}))

	return nil
}
