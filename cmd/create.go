package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/cassandra/internal/assistant"
)

func newCreateCmd() *cobra.Command {
	var (
		calendarID string
		attendees  []string
	)

	cmd := &cobra.Command{
		Use:   "create <description>",
		Short: "Create a calendar event from a description",
		Long: `Create an event from a natural-language description. Google Calendar
parses the date and time. Attendees are invited when given with --attendee
or on an "attendees:" line of the description; invalid addresses are skipped.

Examples:
  cassandra create "Lunch with Sam tomorrow at noon"
  cassandra create --attendee sam@example.com "Design review friday 3pm"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, buildDescription(strings.Join(args, " "), attendees), calendarID)
		},
	}

	cmd.Flags().StringVar(&calendarID, "calendar-id", assistant.DefaultCalendarID, "Calendar to create the event in")
	cmd.Flags().StringSliceVar(&attendees, "attendee", nil, "Email address to invite (repeatable or comma-separated)")

	return cmd
}

// buildDescription appends the attendee flags as an attendees line.
func buildDescription(description string, attendees []string) string {
	if len(attendees) == 0 {
		return description
	}
	return description + "\nattendees: " + strings.Join(attendees, ", ")
}

func runCreate(cmd *cobra.Command, description, calendarID string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("description is required")
	}

	session, err := newCLISession(cmd)
	if err != nil {
		return err
	}
	defer session.Close()

	if session.config.ReadOnly {
		return fmt.Errorf("event creation is disabled in read-only mode")
	}

	sc := session.context
	outcome := sc.Creator(session.service, nil, assistant.WithCalendarID(calendarID)).
		Create(cmd.Context(), description, sc.Now())

	fmt.Fprintln(cmd.OutOrStdout(), outcome.String())
	if !outcome.Created() {
		return fmt.Errorf("event was not created: %s", outcome.Status)
	}
	return nil
}
