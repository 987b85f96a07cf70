package google

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage/memory"
)

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{"valid default", "default", false},
		{"valid work", "work", false},
		{"valid with hyphen", "work-email", false},
		{"valid with underscore", "personal_email", false},
		{"valid alphanumeric", "account123", false},
		{"empty", "", true},
		{"with spaces", "my account", true},
		{"with special chars", "account@work", true},
		{"with slash", "work/personal", true},
		{"with dot", "work.email", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAccountName(tt.account)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileTokenProvider_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := NewFileTokenProviderInDir(dir)
	ctx := context.Background()

	assert.False(t, p.HasTokenForAccount("work"))
	_, err := p.GetTokenForAccount(ctx, "work")
	assert.ErrorIs(t, err, ErrNoToken)

	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: time.Unix(1700000000, 0).UTC()}
	require.NoError(t, p.SaveToken(ctx, "work", token))

	assert.True(t, p.HasTokenForAccount("work"))
	got, err := p.GetTokenForAccount(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
	assert.True(t, token.Expiry.Equal(got.Expiry))

	info, err := os.Stat(filepath.Join(dir, "google-work.token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileTokenProvider_InvalidAccount(t *testing.T) {
	p := NewFileTokenProviderInDir(t.TempDir())

	assert.False(t, p.HasTokenForAccount("../etc"))
	_, err := p.GetTokenForAccount(context.Background(), "../etc")
	assert.Error(t, err)
	assert.Error(t, p.SaveToken(context.Background(), "a b", &oauth2.Token{}))
}

func TestFileTokenProvider_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "google-default.token"), []byte("not json"), 0600))

	_, err := NewFileTokenProviderInDir(dir).GetTokenForAccount(context.Background(), "default")
	assert.ErrorContains(t, err, "invalid token file")
}

func TestStaticTokenProvider(t *testing.T) {
	empty := NewStaticTokenProvider("  ")
	assert.False(t, empty.HasTokenForAccount("default"))
	_, err := empty.GetTokenForAccount(context.Background(), "default")
	assert.ErrorIs(t, err, ErrNoToken)

	p := NewStaticTokenProvider("ya29.token")
	assert.True(t, p.HasTokenForAccount("anything"))
	token, err := p.GetTokenForAccount(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
}

func TestStoreTokenProvider(t *testing.T) {
	store := memory.New()
	defer store.Stop()
	p := NewStoreTokenProvider(store)
	ctx := context.Background()

	assert.False(t, p.HasTokenForAccount("default"))
	_, err := p.GetTokenForAccount(ctx, "default")
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, p.SaveToken(ctx, "default", &oauth2.Token{AccessToken: "stored", Expiry: time.Now().Add(time.Hour)}))

	assert.True(t, p.HasTokenForAccount("default"))
	token, err := p.GetTokenForAccount(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "stored", token.AccessToken)
}

func TestChainTokenProvider(t *testing.T) {
	store := memory.New()
	defer store.Stop()
	ctx := context.Background()

	forwarded := NewStoreTokenProvider(store)
	files := NewFileTokenProviderInDir(t.TempDir())
	require.NoError(t, files.SaveToken(ctx, "default", &oauth2.Token{AccessToken: "from-file"}))

	chain := NewChainTokenProvider(nil, forwarded, files)

	token, err := chain.GetTokenForAccount(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "from-file", token.AccessToken)

	require.NoError(t, store.SaveToken(ctx, "default", &oauth2.Token{AccessToken: "forwarded", Expiry: time.Now().Add(time.Hour)}))
	token, err = chain.GetTokenForAccount(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "forwarded", token.AccessToken)

	assert.False(t, chain.HasTokenForAccount("other"))
	_, err = chain.GetTokenForAccount(ctx, "other")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestChainTokenProvider_SaveUsesFirstSaver(t *testing.T) {
	files := NewFileTokenProviderInDir(t.TempDir())
	chain := NewChainTokenProvider(NewStaticTokenProvider(""), files)

	require.NoError(t, chain.SaveToken(context.Background(), "work", &oauth2.Token{AccessToken: "x"}))
	assert.True(t, files.HasTokenForAccount("work"))

	none := NewChainTokenProvider(NewStaticTokenProvider("t"))
	assert.Error(t, none.SaveToken(context.Background(), "work", &oauth2.Token{}))
}

type failingSaver struct{}

func (failingSaver) SaveToken(context.Context, string, *oauth2.Token) error {
	return errors.New("disk full")
}

func TestExchangeAndSave_Validation(t *testing.T) {
	conf := NewOAuthConfig("id", "secret", false)

	assert.Error(t, ExchangeAndSave(context.Background(), conf, failingSaver{}, "bad account", "code"))
	assert.ErrorContains(t, ExchangeAndSave(context.Background(), conf, failingSaver{}, "default", "  "), "cannot be empty")
}

func TestTokenSource(t *testing.T) {
	ctx := context.Background()

	static := NewStaticTokenProvider("abc")
	ts, err := TokenSource(ctx, nil, static, "default")
	require.NoError(t, err)
	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", token.AccessToken)

	_, err = TokenSource(ctx, nil, NewStaticTokenProvider(""), "default")
	assert.ErrorIs(t, err, ErrNoToken)
}
