// Package instrumentation provides OpenTelemetry metrics, tracing and the tool
// audit log for the cassandra MCP server.
//
// # Metrics
//
// Server/HTTP:
//   - http_requests_total: HTTP requests by method, path, and status
//   - http_request_duration_seconds: HTTP request durations
//
// Google API:
//   - google_api_operations_total: Google Calendar calls by service, operation, status
//   - google_api_operation_duration_seconds: Google Calendar call durations
//
// MCP tools:
//   - mcp_tool_invocations_total: tool invocations by tool name and status
//   - mcp_tool_duration_seconds: tool execution durations
//
// Assistant:
//   - calendar_subsearches_total: per-calendar, per-variant sub-searches by status
//   - calendar_search_results: distinct events returned per search, by query kind
//   - calendar_event_creations_total: creation attempts by outcome
//
// *Metrics satisfies assistant.Recorder, so the searcher and creator report
// directly into it.
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and Google API
// calls (google.calendar.<operation>).
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED: enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: service name (default: cassandra)
//   - METRICS_DETAILED_LABELS: add account and calendar labels (default: false)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_ACCOUNT: audit log controls
package instrumentation
