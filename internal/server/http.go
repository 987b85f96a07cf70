package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/giantswarm/mcp-oauth/storage"
	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/teemow/cassandra/internal/instrumentation"
	"github.com/teemow/cassandra/internal/logging"
)

const (
	// AccessTokenHeader carries a Google access token forwarded by the
	// session layer in front of cassandra.
	AccessTokenHeader = "X-Google-Access-Token"

	// RefreshTokenHeader optionally carries the matching refresh token.
	RefreshTokenHeader = "X-Google-Refresh-Token"

	// TokenExpiryHeader optionally carries the access token expiry, RFC3339.
	// A one hour expiry is assumed when it is missing or malformed.
	TokenExpiryHeader = "X-Google-Token-Expiry"

	// AccountHeader names the account a forwarded token belongs to and the
	// account tools act on by default. Only tokens sent with it are stored.
	AccountHeader = "X-Cassandra-Account"

	// RequestIDHeader is echoed back, or generated when the client sent none.
	RequestIDHeader = "X-Request-ID"

	// MCPEndpointPath is where the streamable HTTP transport is mounted.
	MCPEndpointPath = "/mcp"

	defaultAccessTokenExpiry = time.Hour
	tokenStoreTimeout        = 5 * time.Second

	httpReadHeaderTimeout = 10 * time.Second
	httpIdleTimeout       = 120 * time.Second
)

type contextKey int

const (
	accountContextKey contextKey = iota
	requestIDContextKey
	forwardedTokenContextKey
)

// ContextWithForwardedToken returns a context carrying the Google token the
// request was sent with.
func ContextWithForwardedToken(ctx context.Context, token *oauth2.Token) context.Context {
	return context.WithValue(ctx, forwardedTokenContextKey, token)
}

// ForwardedTokenFromContext returns the token forwarded with the request, if any.
func ForwardedTokenFromContext(ctx context.Context) (*oauth2.Token, bool) {
	token, ok := ctx.Value(forwardedTokenContextKey).(*oauth2.Token)
	return token, ok && token != nil
}

// ContextWithAccount returns a context carrying the account of the request.
func ContextWithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// AccountFromContext returns the account set by the HTTP transport, if any.
func AccountFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(accountContextKey).(string)
	return account, ok && account != ""
}

// RequestIDFromContext returns the request ID assigned by RequestIDMiddleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	Addr          string
	MCPServer     *mcpserver.MCPServer
	ServerContext *ServerContext

	// TokenStore receives forwarded Google tokens. Nil disables forwarding.
	TokenStore storage.TokenStore

	// DisableStreaming makes the MCP endpoint answer with plain JSON responses.
	DisableStreaming bool
}

// HTTPServer serves the MCP endpoint and the health probes.
type HTTPServer struct {
	config HTTPServerConfig
	health *HealthChecker
	logger *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// NewHTTPServer creates the streamable HTTP transport.
func NewHTTPServer(config HTTPServerConfig) (*HTTPServer, error) {
	if config.MCPServer == nil {
		return nil, fmt.Errorf("MCP server is required")
	}
	if config.ServerContext == nil {
		return nil, fmt.Errorf("server context is required")
	}
	if config.Addr == "" {
		config.Addr = ":8080"
	}

	return &HTTPServer{
		config: config,
		health: NewHealthChecker(config.ServerContext),
		logger: config.ServerContext.Logger(),
	}, nil
}

// Health returns the health checker backing /healthz and /readyz.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Handler returns the complete HTTP handler, middleware included.
func (s *HTTPServer) Handler() http.Handler {
	opts := []mcpserver.StreamableHTTPOption{mcpserver.WithEndpointPath(MCPEndpointPath)}
	if s.config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(s.config.MCPServer, opts...)

	var mcpHandler http.Handler = streamable
	if s.config.TokenStore != nil {
		mcpHandler = TokenForwardingMiddleware(TokenForwardingConfig{
			Store:    s.config.TokenStore,
			OnStored: s.config.ServerContext.InvalidateAccount,
			Logger:   s.logger,
		})(mcpHandler)
	}
	mcpHandler = AccountMiddleware(mcpHandler)

	mux := http.NewServeMux()
	mux.Handle(MCPEndpointPath, mcpHandler)
	s.health.RegisterHealthEndpoints(mux)

	return RequestIDMiddleware(HTTPMetricsMiddleware(s.config.ServerContext.Metrics())(mux))
}

// Start serves until Shutdown. A graceful shutdown returns nil.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: httpReadHeaderTimeout,
		IdleTimeout:       httpIdleTimeout,
	}
	s.mu.Lock()
	s.httpServer, s.listener = srv, ln
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", "addr", ln.Addr().String(), "endpoint", MCPEndpointPath)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown marks the server unready and drains connections.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Addr returns the bound address once listening, the configured one before.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// AccountMiddleware copies the AccountHeader value into the request context.
func AccountMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if account := r.Header.Get(AccountHeader); account != "" {
			r = r.WithContext(ContextWithAccount(r.Context(), account))
		}
		next.ServeHTTP(w, r)
	})
}

// TokenForwardingConfig holds configuration for TokenForwardingMiddleware.
type TokenForwardingConfig struct {
	Store storage.TokenStore

	// OnStored is called with the account after its token was replaced.
	OnStored func(account string)

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// TokenForwardingMiddleware attaches Google tokens forwarded in AccessTokenHeader
// to the request context, so calendar calls of that request use them. Tokens
// sent together with AccountHeader are also stored under that account for
// later requests naming it. A token without an account is never stored, since
// concurrent clients would otherwise overwrite each other's default account.
// A failing store is logged and the request proceeds.
func TokenForwardingMiddleware(config TokenForwardingConfig) func(http.Handler) http.Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessToken := r.Header.Get(AccessTokenHeader)
			if accessToken == "" {
				next.ServeHTTP(w, r)
				return
			}

			refreshToken := r.Header.Get(RefreshTokenHeader)
			token := &oauth2.Token{
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
				TokenType:    "Bearer",
				Expiry:       parseTokenExpiry(r.Header.Get(TokenExpiryHeader), now()),
			}
			r = r.WithContext(ContextWithForwardedToken(r.Context(), token))

			account := r.Header.Get(AccountHeader)
			if account == "" {
				logger.Debug("using forwarded access token for this request only",
					"token", logging.SanitizeToken(accessToken),
				)
				next.ServeHTTP(w, r)
				return
			}

			storeCtx, cancel := context.WithTimeout(r.Context(), tokenStoreTimeout)
			err := config.Store.SaveToken(storeCtx, account, token)
			cancel()

			if err != nil {
				logger.Error("failed to store forwarded access token",
					logging.UserHash(account),
					logging.Err(err),
				)
			} else {
				logger.Debug("stored forwarded access token",
					logging.UserHash(account),
					"has_refresh_token", refreshToken != "",
					"token", logging.SanitizeToken(accessToken),
				)
				if config.OnStored != nil {
					config.OnStored(account)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// parseTokenExpiry falls back to a one hour expiry for empty or malformed values.
func parseTokenExpiry(value string, now time.Time) time.Time {
	if value == "" {
		return now.Add(defaultAccessTokenExpiry)
	}
	expiry, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return now.Add(defaultAccessTokenExpiry)
	}
	return expiry
}

// RequestIDMiddleware propagates RequestIDHeader, generating a UUID when the
// client did not send one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDContextKey, id)))
	})
}

// HTTPMetricsMiddleware records http_requests_total and request durations.
func HTTPMetricsMiddleware(metrics *instrumentation.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			metrics.RecordHTTPRequest(r.Context(), r.Method, metricsPath(r.URL.Path), rec.status, time.Since(start))
		})
	}
}

// metricsPath keeps the path label bounded.
func metricsPath(path string) string {
	switch path {
	case MCPEndpointPath, "/healthz", "/readyz", "/healthz/detailed":
		return path
	default:
		return "other"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps server-sent event streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
