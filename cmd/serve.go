package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/giantswarm/mcp-oauth/storage"
	"github.com/giantswarm/mcp-oauth/storage/memory"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/cassandra/internal/instrumentation"
	"github.com/teemow/cassandra/internal/logging"
	"github.com/teemow/cassandra/internal/resources"
	"github.com/teemow/cassandra/internal/server"
	"github.com/teemow/cassandra/internal/tools/calendar_tools"
	"github.com/teemow/cassandra/internal/tools/google_tools"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server to provide calendar search and event creation tools
for AI assistants.

Supports multiple transports:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP server on /mcp

On the streamable-http transport a session layer in front of cassandra can
forward Google tokens in the X-Google-Access-Token header. The token is used
for that request; when X-Cassandra-Account names an account it is also kept
for later requests naming the same account.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := loadServeConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(config)
		},
	}

	cmd.Flags().String("transport", transportStdio, "Transport type: stdio or streamable-http. Can also use MCP_TRANSPORT env var.")
	cmd.Flags().String("http-addr", ":8080", "HTTP server address (for streamable-http transport). Can also use MCP_HTTP_ADDR env var.")
	cmd.Flags().Bool("disable-streaming", false, "Answer MCP requests with plain JSON instead of server-sent events (for streamable-http transport)")

	// Metrics server flags
	cmd.Flags().Bool("metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().String("metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(config *ServeConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(flushCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// stdio owns stdout, so metrics are only served next to the HTTP transport.
	if config.Transport != transportStdio && config.MetricsEnabled && provider.ServesPrometheus() {
		metricsServer, err := startMetricsServer(config.MetricsAddr, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	audit := instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging)

	// Forwarded tokens only arrive over HTTP.
	var tokenStore storage.TokenStore
	if config.Transport == transportStreamableHTTP {
		store := memory.New()
		defer store.Stop()
		tokenStore = store
	}

	serverContext, err := config.ServerContext(shutdownCtx, tokenStore, provider.Metrics(), audit)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := newMCPServer()
	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	switch config.Transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	case transportStreamableHTTP:
		logger.Info("starting cassandra MCP server",
			"transport", config.Transport,
			"read_only", config.ReadOnly,
			"calendars", len(config.CalendarIDs),
		)
		return runStreamableHTTPServer(shutdownCtx, server.HTTPServerConfig{
			Addr:             config.HTTPAddr,
			MCPServer:        mcpSrv,
			ServerContext:    serverContext,
			TokenStore:       tokenStore,
			DisableStreaming: config.DisableStreaming,
		})
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", config.Transport)
	}
}

// startMetricsServer binds the metrics port before serving so a taken port
// fails startup instead of being logged later.
func startMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}
	if err := metricsServer.Listen(); err != nil {
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	}

	go func() {
		if err := metricsServer.Start(); err != nil {
			logger.Error("metrics server stopped", logging.Err(err))
		}
	}()
	return metricsServer, nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("cassandra", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, sc)
			},
		},
		{
			name: "Google OAuth",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, sc)
			},
		},
		{
			name: "Calendar Resources",
			register: func() error {
				return resources.RegisterCalendarResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, config server.HTTPServerConfig) error {
	httpServer, err := server.NewHTTPServer(config)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil {
			serverDone <- err
		}
	}()

	logger := config.ServerContext.Logger()
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped normally")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
