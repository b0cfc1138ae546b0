// Package gcs manages Globus Connect Server v5 resources on the local
// host by driving the globus-connect-server CLI. The CLI is the only
// supported management surface for node-local state (endpoint setup,
// node setup), so every operation here shells out and parses the CLI's
// JSON or key/value output.
package gcs

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// Result carries the output of a finished CLI invocation. A nonzero
// ExitCode is not an error at this layer; callers decide how to treat
// it because the CLI signals idempotent conflicts through exit codes.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a command line. extraEnv entries ("KEY=value") are
// appended to the inherited environment for that invocation only.
type Runner interface {
	Run(ctx context.Context, extraEnv []string, args ...string) (Result, error)
}

type execRunner struct {
	env []string
}

// NewExecRunner returns a Runner backed by os/exec. baseEnv entries
// ("KEY=value") are added to every invocation, typically the
// GCS_CLI_CLIENT_ID and GCS_CLI_CLIENT_SECRET credentials the CLI
// needs for non-interactive authentication.
func NewExecRunner(baseEnv []string) Runner {
	return &execRunner{env: baseEnv}
}

func (r *execRunner) Run(ctx context.Context, extraEnv []string, args ...string) (Result, error) {
	if len(args) == 0 {
		return Result{}, errors.New("empty command")
	}

	// #nosec G204 -- arguments come from validated configuration
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = append(os.Environ(), r.env...)
	cmd.Env = append(cmd.Env, extraEnv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}
