// Package resources provides MCP resources for read-only calendar context.
// Resources are data sources that MCP clients can fetch without a tool call:
// the current time block and the calendars of the account.
//
// The account is taken from the X-Cassandra-Account header on the HTTP
// transport, so each session sees its own calendars.
package resources
