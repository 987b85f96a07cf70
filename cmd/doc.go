// Package cmd implements the command-line interface for cassandra.
//
// This package provides the following commands:
//   - serve: Start the MCP server (stdio or streamable-http) for AI assistants
//   - search: Search calendar events from the terminal
//   - create: Create a calendar event from a natural-language description
//   - now: Print the current date, time and timezone
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Every setting is a flag with an environment fallback. A .env file in the
// working directory is loaded before the flags are read.
package cmd
