package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/cassandra/internal/assistant"
	"github.com/teemow/cassandra/internal/calendar"
	"github.com/teemow/cassandra/internal/google"
	"github.com/teemow/cassandra/internal/instrumentation"
	"github.com/teemow/cassandra/internal/logging"
)

// DiscoverCalendars is the calendar ID list entry that selects every calendar
// visible to the account.
const DiscoverCalendars = "all"

// CalendarService is the per-account calendar capability the tools work with.
type CalendarService interface {
	assistant.Backend
	ListCalendars(ctx context.Context) ([]calendar.CalendarInfo, error)
	CalendarIDs(ctx context.Context) ([]string, error)
}

var _ CalendarService = (*calendar.Client)(nil)

// Config holds the settings shared by every tool invocation.
type Config struct {
	// CalendarIDs are searched by default. A single "all" entry discovers
	// the account's calendars on every search.
	CalendarIDs []string

	// Location is the timezone "now" is rendered in. Defaults to time.Local.
	Location *time.Location

	// Concurrency bounds the sub-searches in flight per search.
	Concurrency int

	// ReadOnly disables event creation.
	ReadOnly bool

	OAuthConfig   *oauth2.Config
	TokenProvider google.TokenProvider
	TokenSaver    google.TokenSaver

	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger
	Logger      *slog.Logger

	// Clock overrides time.Now, used by tests.
	Clock func() time.Time

	// ClientOptions are passed to every calendar client created by the context.
	ClientOptions []calendar.ClientOption
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	config   Config
	services map[string]CalendarService // Maps account name to calendar service
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, config Config) (*ServerContext, error) {
	if config.TokenProvider == nil {
		return nil, fmt.Errorf("token provider is required")
	}
	if config.OAuthConfig == nil {
		config.OAuthConfig = google.NewOAuthConfig("", "", config.ReadOnly)
	}
	if config.Location == nil {
		config.Location = assistant.LocalLocation()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = assistant.DefaultConcurrency
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.Metrics == nil {
		config.Metrics = &instrumentation.Metrics{}
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		config:   config,
		services: make(map[string]CalendarService),
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// HasTokenForAccount reports whether a Google token is available for the account.
func (sc *ServerContext) HasTokenForAccount(account string) bool {
	sc.mu.RLock()
	_, cached := sc.services[account]
	sc.mu.RUnlock()
	return cached || sc.config.TokenProvider.HasTokenForAccount(account)
}

// CalendarServiceForAccount returns the calendar service for a specific account.
// Creates and caches the client if it doesn't exist yet. Returns an error
// wrapping google.ErrNoToken if the account has no token.
func (sc *ServerContext) CalendarServiceForAccount(account string) (CalendarService, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if svc, ok := sc.services[account]; ok {
		return svc, nil
	}

	if !sc.config.TokenProvider.HasTokenForAccount(account) {
		return nil, fmt.Errorf("%w for account %s", google.ErrNoToken, account)
	}

	opts := append([]calendar.ClientOption{calendar.WithMetrics(sc.config.Metrics)}, sc.config.ClientOptions...)
	client, err := calendar.NewClientForAccount(sc.ctx, sc.config.OAuthConfig, sc.config.TokenProvider, account, opts...)
	if err != nil {
		return nil, err
	}

	sc.services[account] = client
	return client, nil
}

// CalendarServiceForRequest returns the calendar service a tool call should use.
// A token forwarded with the request gets a client of its own that is never
// cached, so concurrent requests cannot see each other's tokens. Otherwise the
// cached client of the account is used.
func (sc *ServerContext) CalendarServiceForRequest(ctx context.Context, account string) (CalendarService, error) {
	token, ok := ForwardedTokenFromContext(ctx)
	if !ok {
		return sc.CalendarServiceForAccount(account)
	}

	opts := append([]calendar.ClientOption{calendar.WithMetrics(sc.config.Metrics)}, sc.config.ClientOptions...)
	client, err := calendar.NewClient(sc.ctx, account, sc.config.OAuthConfig.TokenSource(sc.ctx, token), opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// SetCalendarServiceForAccount sets the calendar service for a specific account
func (sc *ServerContext) SetCalendarServiceForAccount(account string, svc CalendarService) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.services[account] = svc
}

// InvalidateAccount drops the cached client so the next call picks up a new token.
func (sc *ServerContext) InvalidateAccount(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.services, account)
}

// CalendarIDs resolves the calendars a search covers. Explicit IDs win over
// the configured ones; "all" asks the service for every visible calendar.
func (sc *ServerContext) CalendarIDs(ctx context.Context, svc CalendarService, explicit []string) ([]string, error) {
	ids := explicit
	if len(ids) == 0 {
		ids = sc.config.CalendarIDs
	}
	if len(ids) == 1 && ids[0] == DiscoverCalendars {
		discovered, err := svc.CalendarIDs(ctx)
		if err != nil {
			return nil, err
		}
		ids = discovered
	}
	if len(ids) == 0 {
		return []string{assistant.DefaultCalendarID}, nil
	}
	return ids, nil
}

// Searcher returns a search orchestrator over svc.
func (sc *ServerContext) Searcher(svc CalendarService, logger *slog.Logger) *assistant.Searcher {
	return assistant.NewSearcher(svc, sc.assistantOptions(logger)...)
}

// Creator returns an event creation assistant over svc. Options such as
// assistant.WithCalendarID are applied after the shared ones.
func (sc *ServerContext) Creator(svc CalendarService, logger *slog.Logger, opts ...assistant.Option) *assistant.Creator {
	return assistant.NewCreator(svc, append(sc.assistantOptions(logger), opts...)...)
}

func (sc *ServerContext) assistantOptions(logger *slog.Logger) []assistant.Option {
	if logger == nil {
		logger = sc.config.Logger
	}
	return []assistant.Option{
		assistant.WithConcurrency(sc.config.Concurrency),
		assistant.WithLogger(logging.NewSlogAdapter(logger)),
		assistant.WithRecorder(sc.config.Metrics),
		assistant.WithClock(sc.Now),
	}
}

// Now returns the current time in the configured location.
func (sc *ServerContext) Now() time.Time {
	return sc.config.Clock().In(sc.config.Location)
}

// Location returns the configured timezone.
func (sc *ServerContext) Location() *time.Location {
	return sc.config.Location
}

// Concurrency is the limit on calendar calls one tool invocation runs in parallel.
func (sc *ServerContext) Concurrency() int {
	return sc.config.Concurrency
}

// ReadOnly reports whether write tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	return sc.config.ReadOnly
}

// OAuthConfig returns the Google OAuth client configuration.
func (sc *ServerContext) OAuthConfig() *oauth2.Config {
	return sc.config.OAuthConfig
}

// TokenSaver returns where authorization codes are persisted, nil if tokens
// cannot be saved.
func (sc *ServerContext) TokenSaver() google.TokenSaver {
	return sc.config.TokenSaver
}

// Metrics returns the metrics recorder. Never nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.config.Metrics
}

// AuditLogger returns the audit logger, nil when auditing is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.config.AuditLogger
}

// Logger returns the process logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.config.Logger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
