// Package calendar_tools provides the MCP tools an assistant uses to work with
// Google Calendar: searching events by name or time, creating events from a
// free-text description, listing calendars and reading the current time.
//
// Tools act on the account given by the "account" argument, falling back to
// the X-Cassandra-Account header and then "default". An account without a
// token gets an authorization hint together with the current time instead of
// an error.
package calendar_tools
