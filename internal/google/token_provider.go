package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage"
)

// ErrNoToken is returned when no token exists for an account.
var ErrNoToken = errors.New("no Google OAuth token found")

// TokenProvider is an interface for providing OAuth tokens for Google APIs
// This abstraction allows different token sources (file-based, OAuth store, etc.)
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// TokenSaver persists tokens obtained through the authorization flow.
type TokenSaver interface {
	SaveToken(ctx context.Context, account string, token *oauth2.Token) error
}

// FileTokenProvider provides tokens from disk files, one per account.
type FileTokenProvider struct {
	dir string
}

// NewFileTokenProvider creates a file-based token provider in the user cache directory.
func NewFileTokenProvider() *FileTokenProvider {
	return NewFileTokenProviderInDir(tokenDir())
}

// NewFileTokenProviderInDir creates a file-based token provider rooted at dir.
func NewFileTokenProviderInDir(dir string) *FileTokenProvider {
	return &FileTokenProvider{dir: dir}
}

func (p *FileTokenProvider) path(account string) string {
	return filepath.Join(p.dir, "google-"+account+".token")
}

// GetTokenForAccount reads the token file of the account.
func (p *FileTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.path(account))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token file for account %s: %w", account, err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
	}
	return &token, nil
}

// HasTokenForAccount checks if a token file exists for the specified account
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(p.path(account))
	return err == nil
}

// SaveToken writes the token file of the account, readable only by the owner.
func (p *FileTokenProvider) SaveToken(_ context.Context, account string, token *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if err := os.MkdirAll(p.dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(p.path(account), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// StaticTokenProvider serves one bearer token for every account, for example a
// token minted outside cassandra and passed through GOOGLE_ACCESS_TOKEN.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider for a fixed access token.
func NewStaticTokenProvider(accessToken string) *StaticTokenProvider {
	return &StaticTokenProvider{token: strings.TrimSpace(accessToken)}
}

// GetTokenForAccount returns the static token.
func (p *StaticTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	if p.token == "" {
		return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
	}
	return &oauth2.Token{AccessToken: p.token, TokenType: "Bearer"}, nil
}

// HasTokenForAccount reports whether a token is configured.
func (p *StaticTokenProvider) HasTokenForAccount(string) bool {
	return p.token != ""
}

// StoreTokenProvider reads tokens from an mcp-oauth token store, keyed by account.
type StoreTokenProvider struct {
	store storage.TokenStore
}

// NewStoreTokenProvider creates a token provider from an mcp-oauth TokenStore.
func NewStoreTokenProvider(store storage.TokenStore) *StoreTokenProvider {
	return &StoreTokenProvider{store: store}
}

// GetTokenForAccount retrieves the stored token of the account.
func (p *StoreTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	token, err := p.store.GetToken(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("%w for account %s: %v", ErrNoToken, account, err)
	}
	return token, nil
}

// HasTokenForAccount checks if a token exists for the specified account.
func (p *StoreTokenProvider) HasTokenForAccount(account string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := p.store.GetToken(ctx, account)
	return err == nil
}

// SaveToken stores the token of the account.
func (p *StoreTokenProvider) SaveToken(ctx context.Context, account string, token *oauth2.Token) error {
	return p.store.SaveToken(ctx, account, token)
}

// ChainTokenProvider asks each provider in turn and returns the first token found.
type ChainTokenProvider struct {
	providers []TokenProvider
}

// NewChainTokenProvider creates a provider that consults providers in order.
// Nil providers are skipped.
func NewChainTokenProvider(providers ...TokenProvider) *ChainTokenProvider {
	var ps []TokenProvider
	for _, p := range providers {
		if p != nil {
			ps = append(ps, p)
		}
	}
	return &ChainTokenProvider{providers: ps}
}

// GetTokenForAccount returns the first token any provider has for the account.
func (c *ChainTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	var errs []error
	for _, p := range c.providers {
		if !p.HasTokenForAccount(account) {
			continue
		}
		token, err := p.GetTokenForAccount(ctx, account)
		if err == nil {
			return token, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
	}
	return nil, errors.Join(errs...)
}

// HasTokenForAccount reports whether any provider has a token for the account.
func (c *ChainTokenProvider) HasTokenForAccount(account string) bool {
	for _, p := range c.providers {
		if p.HasTokenForAccount(account) {
			return true
		}
	}
	return false
}

// SaveToken saves through the first provider able to persist tokens.
func (c *ChainTokenProvider) SaveToken(ctx context.Context, account string, token *oauth2.Token) error {
	for _, p := range c.providers {
		if s, ok := p.(TokenSaver); ok {
			return s.SaveToken(ctx, account, token)
		}
	}
	return fmt.Errorf("no token provider can save tokens")
}

// ExchangeAndSave trades an authorization code for a token and persists it.
func ExchangeAndSave(ctx context.Context, conf *oauth2.Config, saver TokenSaver, account, code string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("authorization code cannot be empty")
	}
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if err := saver.SaveToken(ctx, account, token); err != nil {
		return fmt.Errorf("failed to save token for account %s: %w", account, err)
	}
	return nil
}

// TokenSource returns a token source for the account. With client credentials
// configured the source refreshes expired tokens, otherwise the token is used as is.
func TokenSource(ctx context.Context, conf *oauth2.Config, provider TokenProvider, account string) (oauth2.TokenSource, error) {
	token, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	if conf != nil && conf.ClientID != "" && token.RefreshToken != "" {
		return conf.TokenSource(ctx, token), nil
	}
	return oauth2.StaticTokenSource(token), nil
}
