package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/cassandra/internal/assistant"
)

func newNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Print the current date, time and timezone",
		Long: `Print the time information the assistant prefixes its answers with.
No Google account is needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			loc, err := config.Location()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), assistant.CurrentTimeInfo(time.Now().In(loc)))
			return nil
		},
	}
}
