package common

import (
	"context"

	"github.com/teemow/cassandra/internal/google"
	"github.com/teemow/cassandra/internal/server"
)

// GetAccountFromArgs extracts the account name from request arguments and context.
//
// Priority order:
//  1. Explicit "account" argument in request
//  2. X-Cassandra-Account header of the HTTP request (set by server.AccountMiddleware)
//  3. "default"
func GetAccountFromArgs(ctx context.Context, args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	if account, ok := server.AccountFromContext(ctx); ok {
		return account
	}
	return google.DefaultAccount
}
