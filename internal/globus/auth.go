package globus

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/m1yag1/globusctl/internal/config"
)

// resourceServers maps a service to the resource server name the Globus
// CLI stores its token under.
var resourceServers = map[string]string{
	ServiceAuth:     "auth.globus.org",
	ServiceTransfer: "transfer.api.globus.org",
	ServiceGroups:   "groups.api.globus.org",
	ServiceCompute:  "funcx_service",
	ServiceFlows:    "flows.globus.org",
	ServiceTimers:   "524230d7-ea86-4a52-8312-86065a9e0417",
	ServiceSearch:   "search.api.globus.org",
}

// tokenSource builds the oauth2 token source for one service according to
// the configured authentication method.
//
// client_credentials mints a fresh per-service token from the Globus Auth
// token endpoint and refreshes it on expiry. access_token and cli wrap an
// existing bearer token; those never refresh, so long runs can outlive
// them.
func tokenSource(ctx context.Context, auth config.AuthConfig, service string) (oauth2.TokenSource, error) {
	switch auth.Method {
	case config.AuthMethodClientCredentials:
		cc := clientcredentials.Config{
			ClientID:     auth.ClientID,
			ClientSecret: auth.ClientSecret,
			TokenURL:     TokenURL(),
			Scopes:       Scopes(service),
		}
		return cc.TokenSource(ctx), nil

	case config.AuthMethodAccessToken:
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: auth.AccessToken}), nil

	case config.AuthMethodCLI:
		token, err := cliToken(auth.CLITokenFile, service)
		if err != nil {
			return nil, err
		}
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), nil

	default:
		return nil, fmt.Errorf("unsupported auth method: %s", auth.Method)
	}
}

// httpClientFor returns an HTTP client whose transport injects the bearer
// token for the given service.
func httpClientFor(ctx context.Context, auth config.AuthConfig, service string) (*http.Client, error) {
	ts, err := tokenSource(ctx, auth, service)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

// cliTokenPath returns the Globus CLI token storage location.
func cliTokenPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".globus", "cli", "storage.json"), nil
}

// cliToken reads the access token for a service from the Globus CLI token
// storage file.
func cliToken(path, service string) (string, error) {
	resolved, err := cliTokenPath(path)
	if err != nil {
		return "", err
	}

	// #nosec G304
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to read CLI token storage, run 'globus login' first: %w", err)
	}

	rs, ok := resourceServers[service]
	if !ok {
		return "", fmt.Errorf("unknown service: %s", service)
	}

	doc := gjson.ParseBytes(data)

	// Tokens live under a by-resource-server map, either at the top level
	// or nested under a profile namespace.
	if tok := doc.Get("tokens." + escapeGJSONKey(rs) + ".access_token"); tok.Exists() {
		return tok.String(), nil
	}

	var found string
	doc.ForEach(func(_, profile gjson.Result) bool {
		if tok := profile.Get(escapeGJSONKey(rs) + ".access_token"); tok.Exists() {
			found = tok.String()
			return false
		}
		return true
	})
	if found != "" {
		return found, nil
	}

	return "", fmt.Errorf("no %s token in CLI storage, run 'globus login' first", service)
}

// escapeGJSONKey escapes dots in a key so gjson treats it as a literal
// map key rather than a path.
func escapeGJSONKey(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}
