package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/cassandra/internal/assistant"
	"github.com/teemow/cassandra/internal/google"
	"github.com/teemow/cassandra/internal/server"
	"github.com/teemow/cassandra/internal/tools/common"
)

const (
	// TimeResourceURI serves the current time in the configured timezone.
	TimeResourceURI = "calendar://time"

	// CalendarsResourceURI serves the calendar list of the session account.
	CalendarsResourceURI = "calendar://calendars"

	mimeTypeJSON = "application/json"
)

// RegisterCalendarResources registers the time and calendar list resources.
func RegisterCalendarResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	timeResource := mcp.NewResource(
		TimeResourceURI,
		"Current Time",
		mcp.WithResourceDescription("Current date, time and timezone as used to resolve relative dates"),
		mcp.WithMIMEType(mimeTypeJSON),
	)

	s.AddResource(timeResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleCurrentTime(ctx, request, sc)
	})

	calendarsResource := mcp.NewResource(
		CalendarsResourceURI,
		"Calendars",
		mcp.WithResourceDescription("Calendars of the current Google account, with access roles"),
		mcp.WithMIMEType(mimeTypeJSON),
	)

	s.AddResource(calendarsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleCalendars(ctx, request, sc)
	})

	return nil
}

// timeData is the calendar://time payload.
type timeData struct {
	Now      string `json:"now"`
	Timezone string `json:"timezone"`
	Summary  string `json:"summary"`
}

func handleCurrentTime(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	now := sc.Now()
	return jsonContents(request.Params.URI, timeData{
		Now:      now.Format(time.RFC3339),
		Timezone: now.Location().String(),
		Summary:  assistant.CurrentTimeInfo(now),
	})
}

// calendarData is one entry of the calendar://calendars payload.
type calendarData struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	AccessRole string `json:"accessRole"`
	TimeZone   string `json:"timeZone,omitempty"`
	Primary    bool   `json:"primary"`
	Writable   bool   `json:"writable"`
}

type calendarsData struct {
	Account   string         `json:"account"`
	Calendars []calendarData `json:"calendars"`
}

func handleCalendars(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := common.GetAccountFromArgs(ctx, nil)

	svc, err := sc.CalendarServiceForRequest(ctx, account)
	if err != nil {
		if errors.Is(err, google.ErrNoToken) {
			return nil, fmt.Errorf("%w: %s", err, google.GetAuthenticationErrorMessage(account))
		}
		return nil, fmt.Errorf("failed to get calendar service: %w", err)
	}

	calendars, err := svc.ListCalendars(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	data := calendarsData{Account: account, Calendars: make([]calendarData, 0, len(calendars))}
	for _, cal := range calendars {
		data.Calendars = append(data.Calendars, calendarData{
			ID:         cal.ID,
			Summary:    cal.Summary,
			AccessRole: cal.AccessRole,
			TimeZone:   cal.TimeZone,
			Primary:    cal.Primary,
			Writable:   cal.CanWrite(),
		})
	}
	return jsonContents(request.Params.URI, data)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeTypeJSON,
			Text:     string(jsonData),
		},
	}, nil
}
