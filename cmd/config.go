package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/giantswarm/mcp-oauth/storage"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/teemow/cassandra/internal/assistant"
	"github.com/teemow/cassandra/internal/google"
	"github.com/teemow/cassandra/internal/instrumentation"
	"github.com/teemow/cassandra/internal/server"
)

// Config holds the settings shared by every command.
type Config struct {
	Account     string   `validate:"required,max=64"`
	CalendarIDs []string `validate:"omitempty,dive,required"`
	Timezone    string   `validate:"omitempty,timezone"`
	Concurrency int      `validate:"gte=1,lte=64"`
	ReadOnly    bool

	LogLevel  string `validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat string `validate:"omitempty,oneof=text json"`

	GoogleClientID     string
	GoogleClientSecret string `validate:"required_with=GoogleClientID"`

	// GoogleAccessToken is a bearer token minted elsewhere, used for every account.
	GoogleAccessToken string
}

// ServeConfig adds the transport settings of the serve command.
type ServeConfig struct {
	Config

	Transport        string `validate:"oneof=stdio streamable-http"`
	HTTPAddr         string `validate:"required_if=Transport streamable-http"`
	DisableStreaming bool

	MetricsEnabled bool
	MetricsAddr    string `validate:"required_if=MetricsEnabled true"`
}

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// addGlobalFlags registers the flags every command understands.
func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("log-level", "info", "Log level: debug, info, warn, error. Can also use LOG_LEVEL env var.")
	flags.String("log-format", "text", "Log format: text or json. Can also use LOG_FORMAT env var.")
	flags.String("account", google.DefaultAccount, "Google account to act on. Can also use CALENDAR_ACCOUNT env var.")
	flags.String("calendar-ids", "", "Comma-separated calendar IDs to search, 'all' to discover every calendar (default: primary). Can also use CALENDAR_IDS env var.")
	flags.String("timezone", "", "IANA timezone used for 'now' and event times (default: system timezone). Can also use CALENDAR_TIMEZONE env var.")
	flags.Int("concurrency", assistant.DefaultConcurrency, "Maximum parallel calendar queries per search. Can also use SEARCH_CONCURRENCY env var.")
	flags.Bool("read-only", false, "Disable event creation. Can also use CALENDAR_READ_ONLY env var.")
	flags.String("google-client-id", "", "Google OAuth client ID. Can also use GOOGLE_CLIENT_ID env var.")
	flags.String("google-client-secret", "", "Google OAuth client secret. Can also use GOOGLE_CLIENT_SECRET env var.")
}

// loadConfig resolves the global flags. Environment variables only apply when
// the flag was not explicitly set.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	concurrency, err := envOrFlagInt(cmd, "concurrency", "SEARCH_CONCURRENCY")
	if err != nil {
		return nil, err
	}
	readOnly, err := envOrFlagBool(cmd, "read-only", "CALENDAR_READ_ONLY")
	if err != nil {
		return nil, err
	}

	config := &Config{
		Account:            envOrFlag(cmd, "account", "CALENDAR_ACCOUNT"),
		CalendarIDs:        parseCommaSeparatedList(envOrFlag(cmd, "calendar-ids", "CALENDAR_IDS")),
		Timezone:           envOrFlag(cmd, "timezone", "CALENDAR_TIMEZONE"),
		Concurrency:        concurrency,
		ReadOnly:           readOnly,
		LogLevel:           envOrFlag(cmd, "log-level", "LOG_LEVEL"),
		LogFormat:          envOrFlag(cmd, "log-format", "LOG_FORMAT"),
		GoogleClientID:     envOrFlag(cmd, "google-client-id", "GOOGLE_CLIENT_ID"),
		GoogleClientSecret: envOrFlag(cmd, "google-client-secret", "GOOGLE_CLIENT_SECRET"),
		GoogleAccessToken:  os.Getenv("GOOGLE_ACCESS_TOKEN"),
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Location returns the configured timezone, the process zone when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return assistant.LocalLocation(), nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TokenProviders builds the token lookup chain. Tokens forwarded into store
// win over GOOGLE_ACCESS_TOKEN, which wins over the token files written by
// google_save_auth_code. The file provider is also the saver.
func (c *Config) TokenProviders(store storage.TokenStore) (google.TokenProvider, google.TokenSaver) {
	files := google.NewFileTokenProvider()

	var chain []google.TokenProvider
	if store != nil {
		chain = append(chain, google.NewStoreTokenProvider(store))
	}
	if c.GoogleAccessToken != "" {
		chain = append(chain, google.NewStaticTokenProvider(c.GoogleAccessToken))
	}
	chain = append(chain, files)

	return google.NewChainTokenProvider(chain...), files
}

// ServerContext creates the server context shared by the tools and the CLI.
func (c *Config) ServerContext(ctx context.Context, store storage.TokenStore, metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger) (*server.ServerContext, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	provider, saver := c.TokenProviders(store)

	return server.NewServerContext(ctx, server.Config{
		CalendarIDs:   c.CalendarIDs,
		Location:      loc,
		Concurrency:   c.Concurrency,
		ReadOnly:      c.ReadOnly,
		OAuthConfig:   google.NewOAuthConfig(c.GoogleClientID, c.GoogleClientSecret, c.ReadOnly),
		TokenProvider: provider,
		TokenSaver:    saver,
		Metrics:       metrics,
		AuditLogger:   audit,
		Logger:        slog.Default(),
	})
}

// loadServeConfig resolves the global flags plus the serve command flags.
func loadServeConfig(cmd *cobra.Command) (*ServeConfig, error) {
	base, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	metricsEnabled, err := envOrFlagBool(cmd, "metrics-enabled", "METRICS_ENABLED")
	if err != nil {
		return nil, err
	}
	disableStreaming, err := envOrFlagBool(cmd, "disable-streaming", "MCP_DISABLE_STREAMING")
	if err != nil {
		return nil, err
	}

	config := &ServeConfig{
		Config:           *base,
		Transport:        envOrFlag(cmd, "transport", "MCP_TRANSPORT"),
		HTTPAddr:         envOrFlag(cmd, "http-addr", "MCP_HTTP_ADDR"),
		DisableStreaming: disableStreaming,
		MetricsEnabled:   metricsEnabled,
		MetricsAddr:      envOrFlag(cmd, "metrics-addr", "METRICS_ADDR"),
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// validateConfig runs the struct tag checks and reports every failing field.
func validateConfig(config any) error {
	err := validate.Struct(config)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_with":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "timezone":
		return fmt.Sprintf("%s %q is not a known IANA timezone", fe.Field(), fe.Value())
	case "gte", "lte", "max":
		return fmt.Sprintf("%s is out of range (%s %s)", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// envOrFlag returns the flag value when it was set on the command line, then
// the environment variable, then the flag default.
func envOrFlag(cmd *cobra.Command, flag, env string) string {
	f := cmd.Flags().Lookup(flag)
	if f == nil {
		return os.Getenv(env)
	}
	if !f.Changed {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			return v
		}
	}
	return f.Value.String()
}

func envOrFlagInt(cmd *cobra.Command, flag, env string) (int, error) {
	v := envOrFlag(cmd, flag, env)
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid value %q for --%s (%s): %w", v, flag, env, err)
	}
	return n, nil
}

func envOrFlagBool(cmd *cobra.Command, flag, env string) (bool, error) {
	v := envOrFlag(cmd, flag, env)
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("invalid value %q for --%s (%s): %w", v, flag, env, err)
	}
	return b, nil
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
