package google

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAccount is used when no account is named.
const DefaultAccount = "default"

// oobRedirectURL makes Google display the authorization code for manual copy.
const oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// NewOAuthConfig returns the OAuth2 configuration for the calendar scopes.
func NewOAuthConfig(clientID, clientSecret string, readOnly bool) *oauth2.Config {
	scopes := DefaultOAuthScopes
	if readOnly {
		scopes = ReadOnlyOAuthScopes
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  oobRedirectURL,
		Scopes:       scopes,
	}
}

// GetAuthURL returns the URL a user visits to authorize an account. The account
// name travels as the OAuth state.
func GetAuthURL(conf *oauth2.Config, account string) (string, error) {
	if err := validateAccountName(account); err != nil {
		return "", err
	}
	if conf.ClientID == "" {
		return "", fmt.Errorf("GOOGLE_CLIENT_ID is not configured")
	}
	return conf.AuthCodeURL(account, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// GetAuthenticationErrorMessage explains how to authorize an account.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("Google OAuth token not found for account %q. "+
		"Call google_get_auth_url with account=%q, open the URL, then pass the code to google_save_auth_code.",
		account, account)
}

func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, hyphens and underscores are allowed", account)
	}
	return nil
}

// tokenDir is where FileTokenProvider keeps token files by default.
func tokenDir() string {
	return filepath.Join(userCacheDir(), "cassandra")
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		return os.TempDir()
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
