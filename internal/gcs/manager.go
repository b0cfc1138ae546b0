package gcs

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const defaultInfoPath = "/var/lib/globus-connect-server/info.json"

// Manager reconciles GCS v5 resources via the CLI. It is safe for use
// from a single goroutine; the CLI itself serializes node-local state.
type Manager struct {
	run      Runner
	extra    []string
	clientID string
	infoPath string
	dryRun   bool

	pollInterval     time.Duration
	roleFindAttempts int
}

// Option configures a Manager.
type Option func(*Manager)

// WithExtraArgs appends the given arguments to every
// globus-connect-server invocation.
func WithExtraArgs(args []string) Option {
	return func(m *Manager) { m.extra = args }
}

// WithClientID sets the OAuth client ID used to derive the endpoint
// owner identity during setup.
func WithClientID(id string) Option {
	return func(m *Manager) { m.clientID = id }
}

// WithInfoPath overrides the path of the GCS deployment info file.
func WithInfoPath(path string) Option {
	return func(m *Manager) { m.infoPath = path }
}

// WithDryRun makes every operation report what it would change without
// invoking any mutating CLI command.
func WithDryRun() Option {
	return func(m *Manager) { m.dryRun = true }
}

// WithPollInterval sets the base delay for eventual-consistency lookup
// retries. Mainly useful in tests.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) { m.pollInterval = d }
}

// WithRoleFindAttempts bounds the role lookup retry loop.
func WithRoleFindAttempts(n int) Option {
	return func(m *Manager) { m.roleFindAttempts = n }
}

// NewManager returns a Manager that drives the CLI through run.
func NewManager(run Runner, opts ...Option) *Manager {
	m := &Manager{
		run:              run,
		infoPath:         defaultInfoPath,
		pollInterval:     time.Second,
		roleFindAttempts: 30,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// gcs runs a globus-connect-server subcommand with the configured
// extra arguments appended.
func (m *Manager) gcs(ctx context.Context, args ...string) (Result, error) {
	argv := append([]string{"globus-connect-server"}, args...)
	argv = append(argv, m.extra...)
	return m.run.Run(ctx, nil, argv...)
}

// gcsEnv is gcs with additional environment entries, used for commands
// that require GCS_CLI_ENDPOINT_ID.
func (m *Manager) gcsEnv(ctx context.Context, env []string, args ...string) (Result, error) {
	argv := append([]string{"globus-connect-server"}, args...)
	argv = append(argv, m.extra...)
	return m.run.Run(ctx, env, argv...)
}

// cliError builds an error from a failed invocation, preferring stderr
// since the CLI writes diagnostics there.
func cliError(what string, res Result) error {
	detail := strings.TrimSpace(res.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(res.Stdout)
	}
	return fmt.Errorf("%s: %s", what, detail)
}
