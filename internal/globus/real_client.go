package globus

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/m1yag1/globusctl/internal/config"
)

// RealClient implements Client against the Globus platform REST APIs.
type RealClient struct {
	auth   config.AuthConfig
	dryRun bool

	mu       sync.Mutex
	clients  map[string]*restClient
	warnings []string
}

var _ Client = (*RealClient)(nil)

// Option configures a RealClient.
type Option func(*RealClient)

// WithDryRun makes all mutating operations report what they would do
// without calling the platform.
func WithDryRun() Option {
	return func(c *RealClient) { c.dryRun = true }
}

// NewRealClient creates a new RealClient.
func NewRealClient(auth config.AuthConfig, opts ...Option) *RealClient {
	c := &RealClient{
		auth:    auth,
		clients: make(map[string]*restClient),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// service returns the REST client for a service, building it on first
// use. Per-service construction keeps auth methods with partial token
// coverage working for the services they do cover.
func (c *RealClient) service(ctx context.Context, name string) (*restClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rc, ok := c.clients[name]; ok {
		return rc, nil
	}

	httpClient, err := httpClientFor(ctx, c.auth, name)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate for %s: %w", name, err)
	}

	rc := newRESTClient(name, httpClient)
	c.clients[name] = rc
	return rc, nil
}

// warnf records a non-fatal condition for the caller to surface.
func (c *RealClient) warnf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// Warnings drains the warnings accumulated so far.
func (c *RealClient) Warnings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.warnings
	c.warnings = nil
	return out
}

// Whoami returns the identity behind the active credential.
func (c *RealClient) Whoami(ctx context.Context) (*Identity, error) {
	authSvc, err := c.service(ctx, ServiceAuth)
	if err != nil {
		return nil, err
	}

	doc, err := authSvc.get(ctx, "/oauth2/userinfo", nil)
	if err != nil {
		return nil, FriendlyError(err)
	}

	id := &Identity{
		ID:       doc.Get("sub").String(),
		Username: doc.Get("preferred_username").String(),
		Name:     doc.Get("name").String(),
		Email:    doc.Get("email").String(),
	}
	if id.ID == "" {
		return nil, fmt.Errorf("userinfo response carried no identity")
	}
	return id, nil
}

// ResolveIdentities maps usernames to identity ids. Unknown usernames are
// provisioned, matching how the platform handles invitations.
func (c *RealClient) ResolveIdentities(ctx context.Context, usernames []string) (map[string]string, error) {
	if len(usernames) == 0 {
		return map[string]string{}, nil
	}

	authSvc, err := c.service(ctx, ServiceAuth)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	for _, u := range usernames {
		query.Add("usernames", u)
	}
	query.Set("provision", "true")

	doc, err := authSvc.get(ctx, "/api/identities", query)
	if err != nil {
		return nil, FriendlyError(err)
	}

	ids := make(map[string]string, len(usernames))
	for _, identity := range doc.Get("identities").Array() {
		ids[identity.Get("username").String()] = identity.Get("id").String()
	}

	for _, u := range usernames {
		if ids[u] == "" {
			return nil, fmt.Errorf("could not resolve identity for %s", u)
		}
	}
	return ids, nil
}
