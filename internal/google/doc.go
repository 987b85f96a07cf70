// Package google provides OAuth2 authentication and token management for the
// Google Calendar API.
//
// Tokens come from a TokenProvider. FileTokenProvider keeps one token file per
// account on disk (stdio transport and CLI), StaticTokenProvider serves a bearer
// token from the environment, and StoreTokenProvider reads tokens forwarded to the
// HTTP transport from an mcp-oauth token store. ChainTokenProvider tries several
// providers in order.
package google
