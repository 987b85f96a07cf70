// Package google_tools provides MCP tools for Google OAuth authentication.
//
// The OAuth flow:
//  1. A calendar tool answers with an authorization hint for an account without a token
//  2. google_get_auth_url returns the authorization URL
//  3. The user visits the URL and authorizes access
//  4. google_save_auth_code exchanges the code and saves the token
//
// Saved tokens are refreshed automatically when client credentials are configured.
package google_tools
