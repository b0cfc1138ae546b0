package handlers

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/tokenstore"
)

// TokenKeeper interface for testing - matches tokenstore.Store.
type TokenKeeper interface {
	Put(ctx context.Context, tokens ...tokenstore.Token) error
	Get(ctx context.Context, resourceServer string) (*tokenstore.Token, error)
	All(ctx context.Context) (map[string]tokenstore.Token, error)
	Remove(ctx context.Context, resourceServer string) (bool, error)
	ClearNamespace(ctx context.Context) error
}

// Factory function variables for token commands - can be replaced in
// tests.
var (
	// newTokenStore opens the configured S3 token store.
	newTokenStore = func(ctx context.Context, cfg config.TokenStoreConfig) (TokenKeeper, error) {
		return tokenstore.New(ctx, cfg)
	}

	// lookupEnv reads an environment variable.
	lookupEnv = os.LookupEnv
)

// TokenStoreOptions carries the non-secret fields of a token being
// stored. Token values themselves come from the environment.
type TokenStoreOptions struct {
	ResourceServer string
	Scope          string
	ClientID       string
	ExpiresIn      int64
}

// TokenList prints the resource servers with stored tokens.
func TokenList(ctx context.Context, configPath string) error {
	store, err := openTokenStore(ctx, configPath)
	if err != nil {
		return err
	}

	tokens, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}
	if len(tokens) == 0 {
		fmt.Println("No tokens stored")
		return nil
	}

	servers := make([]string, 0, len(tokens))
	for rs := range tokens {
		servers = append(servers, rs)
	}
	sort.Strings(servers)

	rows := make([][]string, 0, len(servers))
	for _, rs := range servers {
		tok := tokens[rs]
		refresh := "no"
		if tok.RefreshToken != "" {
			refresh = "yes"
		}
		expires := "-"
		if tok.ExpiresAt > 0 {
			expires = time.Unix(tok.ExpiresAt, 0).UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{rs, tok.Scope, refresh, expires, tok.StoredAt})
	}
	printTable(os.Stdout, []string{"Resource Server", "Scope", "Refresh", "Expires", "Stored"}, rows)

	return nil
}

// TokenGet prints the stored access token for a resource server, for
// use in shell pipelines:
//
//	curl -H "Authorization: Bearer $(globusctl token get transfer.api.globus.org)" ...
func TokenGet(ctx context.Context, configPath, resourceServer string) error {
	store, err := openTokenStore(ctx, configPath)
	if err != nil {
		return err
	}

	tok, err := store.Get(ctx, resourceServer)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	if tok == nil {
		return fmt.Errorf("no token stored for %s", resourceServer)
	}

	fmt.Println(tok.AccessToken)
	return nil
}

// TokenStore stores a token read from GLOBUS_ACCESS_TOKEN (and
// optionally GLOBUS_REFRESH_TOKEN) in the configured store.
func TokenStore(ctx context.Context, configPath string, opts TokenStoreOptions) error {
	access, ok := lookupEnv("GLOBUS_ACCESS_TOKEN")
	if !ok || access == "" {
		return fmt.Errorf("GLOBUS_ACCESS_TOKEN is not set")
	}
	refresh, _ := lookupEnv("GLOBUS_REFRESH_TOKEN")

	store, err := openTokenStore(ctx, configPath)
	if err != nil {
		return err
	}

	tok := tokenstore.Token{
		AccessToken:    access,
		RefreshToken:   refresh,
		ResourceServer: opts.ResourceServer,
		Scope:          opts.Scope,
		ClientID:       opts.ClientID,
	}
	if opts.ExpiresIn > 0 {
		tok.ExpiresAt = time.Now().Unix() + opts.ExpiresIn
	}

	if err := store.Put(ctx, tok); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	fmt.Printf("Stored token for %s\n", opts.ResourceServer)
	return nil
}

// TokenRemove deletes the stored token for a resource server.
func TokenRemove(ctx context.Context, configPath, resourceServer string) error {
	store, err := openTokenStore(ctx, configPath)
	if err != nil {
		return err
	}

	removed, err := store.Remove(ctx, resourceServer)
	if err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	if !removed {
		fmt.Printf("No token stored for %s\n", resourceServer)
		return nil
	}

	fmt.Printf("Removed token for %s\n", resourceServer)
	return nil
}

// TokenClear deletes every token in the configured namespace.
func TokenClear(ctx context.Context, configPath string) error {
	store, err := openTokenStore(ctx, configPath)
	if err != nil {
		return err
	}

	if err := store.ClearNamespace(ctx); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}

	fmt.Println("Cleared all tokens in namespace")
	return nil
}

// openTokenStore loads the configuration and opens the token store it
// names.
func openTokenStore(ctx context.Context, configPath string) (TokenKeeper, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.TokenStore == nil {
		return nil, fmt.Errorf("configuration has no token_store section")
	}
	return newTokenStore(ctx, *cfg.TokenStore)
}
