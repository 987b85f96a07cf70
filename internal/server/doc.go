// Package server holds the state shared by all MCP tools and the HTTP side of
// the streamable-http transport.
//
// ServerContext creates one calendar client per Google account on first use
// and caches it. Tools look the client up by account name, run searches and
// event creation through the assistant package, and report to the metrics
// and audit logger held here.
//
// HTTPServer mounts the MCP endpoint at /mcp next to the /healthz and /readyz
// probes. Requests pass through:
//   - RequestIDMiddleware, which echoes or assigns X-Request-ID
//   - HTTPMetricsMiddleware, which records http_requests_total
//   - AccountMiddleware, which carries X-Cassandra-Account into the tool context
//   - TokenForwardingMiddleware, which hands a Google token forwarded in
//     X-Google-Access-Token to the calendar calls of that request, and stores
//     it when X-Cassandra-Account names the account
//
// MetricsServer exposes Prometheus metrics on a separate port.
package server
