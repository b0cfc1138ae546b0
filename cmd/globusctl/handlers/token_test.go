package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/tokenstore"
)

type fakeKeeper struct {
	tokens map[string]tokenstore.Token
	puts   []tokenstore.Token
}

func newFakeKeeper() *fakeKeeper {
	return &fakeKeeper{tokens: make(map[string]tokenstore.Token)}
}

func (f *fakeKeeper) Put(_ context.Context, tokens ...tokenstore.Token) error {
	for _, tok := range tokens {
		f.puts = append(f.puts, tok)
		f.tokens[tok.ResourceServer] = tok
	}
	return nil
}

func (f *fakeKeeper) Get(_ context.Context, resourceServer string) (*tokenstore.Token, error) {
	tok, ok := f.tokens[resourceServer]
	if !ok {
		return nil, nil
	}
	return &tok, nil
}

func (f *fakeKeeper) All(_ context.Context) (map[string]tokenstore.Token, error) {
	return f.tokens, nil
}

func (f *fakeKeeper) Remove(_ context.Context, resourceServer string) (bool, error) {
	_, ok := f.tokens[resourceServer]
	delete(f.tokens, resourceServer)
	return ok, nil
}

func (f *fakeKeeper) ClearNamespace(_ context.Context) error {
	f.tokens = make(map[string]tokenstore.Token)
	return nil
}

func withTokenFixtures(t *testing.T, keeper *fakeKeeper, env map[string]string) {
	t.Helper()
	origLoad := loadConfigFile
	origStore := newTokenStore
	origEnv := lookupEnv
	t.Cleanup(func() {
		loadConfigFile = origLoad
		newTokenStore = origStore
		lookupEnv = origEnv
	})

	loadConfigFile = func(_ string) (*config.Config, error) {
		cfg := testConfig()
		cfg.TokenStore = &config.TokenStoreConfig{Bucket: "tokens", Key: "ci.json"}
		return cfg, nil
	}
	newTokenStore = func(_ context.Context, _ config.TokenStoreConfig) (TokenKeeper, error) {
		return keeper, nil
	}
	lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestTokenStoreReadsSecretsFromEnv(t *testing.T) {
	keeper := newFakeKeeper()
	withTokenFixtures(t, keeper, map[string]string{
		"GLOBUS_ACCESS_TOKEN":  "at-123",
		"GLOBUS_REFRESH_TOKEN": "rt-456",
	})

	err := TokenStore(t.Context(), "", TokenStoreOptions{
		ResourceServer: "transfer.api.globus.org",
		Scope:          "urn:globus:auth:scope:transfer.api.globus.org:all",
		ExpiresIn:      3600,
	})

	require.NoError(t, err)
	require.Len(t, keeper.puts, 1)
	tok := keeper.puts[0]
	assert.Equal(t, "at-123", tok.AccessToken)
	assert.Equal(t, "rt-456", tok.RefreshToken)
	assert.Equal(t, "transfer.api.globus.org", tok.ResourceServer)
	assert.Greater(t, tok.ExpiresAt, int64(0))
}

func TestTokenStoreRequiresAccessToken(t *testing.T) {
	withTokenFixtures(t, newFakeKeeper(), nil)

	err := TokenStore(t.Context(), "", TokenStoreOptions{ResourceServer: "transfer.api.globus.org"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GLOBUS_ACCESS_TOKEN")
}

func TestTokenGetMissing(t *testing.T) {
	withTokenFixtures(t, newFakeKeeper(), nil)

	err := TokenGet(t.Context(), "", "transfer.api.globus.org")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token stored")
}

func TestTokenRemove(t *testing.T) {
	keeper := newFakeKeeper()
	keeper.tokens["transfer.api.globus.org"] = tokenstore.Token{
		AccessToken:    "at-123",
		ResourceServer: "transfer.api.globus.org",
	}
	withTokenFixtures(t, keeper, nil)

	err := TokenRemove(t.Context(), "", "transfer.api.globus.org")

	require.NoError(t, err)
	assert.Empty(t, keeper.tokens)
}

func TestTokenCommandsRequireStoreConfig(t *testing.T) {
	origLoad := loadConfigFile
	t.Cleanup(func() { loadConfigFile = origLoad })
	loadConfigFile = func(_ string) (*config.Config, error) {
		return testConfig(), nil
	}

	err := TokenList(t.Context(), "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "token_store")
}
