// Package logging provides structured logging utilities for cassandra.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Build the process logger once at startup:
//
//	logger := logging.New("info", logging.FormatJSON, os.Stderr)
//
// Attach standard attributes:
//
//	logger := logging.WithOperation(logger, "calendar.search")
//	logger.Info("sub-search failed",
//	    logging.Calendar(calendarID),
//	    logging.Query(query),
//	    logging.Err(err))
//
// # Security Considerations
//
// Search queries and attendee addresses name real people. Queries are logged as
// hashes (Query, QueryHash), emails anonymized (UserHash, AnonymizeEmail) and
// tokens masked (SanitizeToken).
package logging
