package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/cassandra/internal/google"
	"github.com/teemow/cassandra/internal/server"
)

// cliSession is what the one-shot commands work with.
type cliSession struct {
	config  *Config
	context *server.ServerContext
	service server.CalendarService
}

// newCLISession resolves the configuration and connects to the calendar of
// the configured account. Tokens come from GOOGLE_ACCESS_TOKEN or the files
// written by google_save_auth_code.
func newCLISession(cmd *cobra.Command) (*cliSession, error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openCLISession(cmd.Context(), config)
}

func openCLISession(ctx context.Context, config *Config) (*cliSession, error) {
	sc, err := config.ServerContext(ctx, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}

	svc, err := sc.CalendarServiceForAccount(config.Account)
	if err != nil {
		_ = sc.Shutdown()
		if errors.Is(err, google.ErrNoToken) {
			return nil, fmt.Errorf("%w\n%s", err, google.GetAuthenticationErrorMessage(config.Account))
		}
		return nil, fmt.Errorf("failed to connect to Google Calendar: %w", err)
	}

	return &cliSession{config: config, context: sc, service: svc}, nil
}

func (s *cliSession) Close() {
	_ = s.context.Shutdown()
}
