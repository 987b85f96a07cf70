// Package batch provides helpers for tools that act on several calendar items
// in one call.
//
// This package includes helpers for:
//   - Parsing parameters that accept a single value, an array or a JSON array string
//   - Running the per-item calls with bounded parallelism, in input order
//   - Reporting partial failures in one JSON document
package batch
