package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/cassandra/internal/assistant"
)

func newSearchCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search calendar events",
		Long: `Search the configured calendars the same way the calendar_search_events
tool does. Short queries are expanded into spelling variations and the time
window follows words like "today", "next week" or "now".

Examples:
  cassandra search acme
  cassandra search "standup tomorrow"
  cassandra search --mode padded "offsite next week"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), mode)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", assistant.StrategyPrecise, "Time window policy: precise or padded")

	return cmd
}

func runSearch(cmd *cobra.Command, query, mode string) error {
	strategy, err := assistant.ParseWindowStrategy(mode)
	if err != nil {
		return err
	}

	session, err := newCLISession(cmd)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx := cmd.Context()
	sc := session.context
	now := sc.Now()

	calendarIDs, err := sc.CalendarIDs(ctx, session.service, nil)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), assistant.FormatSearchFailure(err, now))
		return fmt.Errorf("failed to resolve calendars: %w", err)
	}

	res := sc.Searcher(session.service, nil).Search(ctx, assistant.SearchRequest{
		Query:       query,
		Now:         now,
		CalendarIDs: calendarIDs,
		Strategy:    strategy,
	})

	fmt.Fprintln(cmd.OutOrStdout(), assistant.FormatSearchResult(res, now))
	return nil
}
