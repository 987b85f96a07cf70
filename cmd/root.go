package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teemow/cassandra/internal/logging"
)

// rootCmd represents the base command for the cassandra application
var rootCmd = &cobra.Command{
	Use:   "cassandra",
	Short: "Calendar assistant that finds and creates Google Calendar events",
	Long: `cassandra answers calendar questions such as "when is my meeting with Acme"
or "what am I doing now" and creates events from natural-language descriptions.

It can run as:
  - An MCP (Model Context Protocol) server for AI assistants (serve)
  - A CLI for one-off searches and event creation (search, create, now)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger := logging.New(
			envOrFlag(cmd, "log-level", "LOG_LEVEL"),
			envOrFlag(cmd, "log-format", "LOG_FORMAT"),
			os.Stderr,
		)
		slog.SetDefault(logger)
		return nil
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	// A missing .env file is fine; the environment is used as is.
	_ = godotenv.Load()

	rootCmd.SetVersionTemplate(`{{printf "cassandra version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of cassandra",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cassandra version %s\n", version)
		},
	}
}

func init() {
	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newNowCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
