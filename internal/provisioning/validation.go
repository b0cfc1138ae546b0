package provisioning

import (
	"fmt"
	"strings"

	"github.com/m1yag1/globusctl/internal/config"
)

// ValidationError represents a configuration validation error or warning.
type ValidationError struct {
	Field    string // Configuration field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == "error"
}

// ValidationPhase implements the Phase interface for pre-flight validation.
type ValidationPhase struct{}

// NewValidationPhase creates a new validation phase.
func NewValidationPhase() *ValidationPhase {
	return &ValidationPhase{}
}

// Name implements the Phase interface.
func (vp *ValidationPhase) Name() string {
	return "validation"
}

// Provision implements the Phase interface.
func (vp *ValidationPhase) Provision(ctx *Context) error {
	ctx.Logger.Printf("[Validation] Running pre-flight validation...")

	allErrors := validate(ctx.Config)

	var errors []ValidationError
	var warnings []ValidationError
	for _, ve := range allErrors {
		if ve.IsError() {
			errors = append(errors, ve)
		} else {
			warnings = append(warnings, ve)
		}
	}

	for _, warning := range warnings {
		LogWarning(ctx.Observer, vp.Name(), warning.Message)
	}

	if len(errors) > 0 {
		var errMsgs []string
		for _, e := range errors {
			errMsgs = append(errMsgs, e.Error())
		}
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errMsgs, "\n  "))
	}

	ctx.Logger.Printf("[Validation] Validation passed")
	return nil
}

// validate runs all validation checks and returns any errors or warnings.
func validate(cfg *config.Config) []ValidationError {
	var results []ValidationError

	if err := cfg.Validate(); err != nil {
		results = append(results, ValidationError{
			Field:    "config",
			Message:  err.Error(),
			Severity: "error",
		})
	}

	results = append(results, checkInlineSecrets(cfg)...)
	results = append(results, checkHighAssuranceOperations(cfg)...)
	results = append(results, checkGCSAuth(cfg)...)

	return results
}

// checkInlineSecrets warns about secrets written directly into the
// configuration file instead of referenced from the environment.
func checkInlineSecrets(cfg *config.Config) []ValidationError {
	var results []ValidationError
	if cfg.Auth.ClientSecret != "" && cfg.Auth.ClientSecretEnv == "" {
		results = append(results, ValidationError{
			Field:    "auth.client_secret",
			Message:  "client_secret is set inline; prefer client_secret_env to keep secrets out of the file",
			Severity: "warning",
		})
	}
	if cfg.Auth.AccessToken != "" && cfg.Auth.AccessTokenEnv == "" {
		results = append(results, ValidationError{
			Field:    "auth.access_token",
			Message:  "access_token is set inline; prefer access_token_env to keep secrets out of the file",
			Severity: "warning",
		})
	}
	return results
}

// checkHighAssuranceOperations warns about operations that the Auth API
// only allows within a recent high-assurance session. They are not
// errors: the run degrades them to warnings when the API refuses.
func checkHighAssuranceOperations(cfg *config.Config) []ValidationError {
	var results []ValidationError
	for _, p := range cfg.Projects {
		if p.State == config.StateAbsent {
			results = append(results, ValidationError{
				Field:    "projects",
				Message:  fmt.Sprintf("deleting project %s requires a high-assurance session and may be skipped", p.Name),
				Severity: "warning",
			})
		}
	}
	for _, c := range cfg.Clients {
		if c.State == config.StateAbsent {
			results = append(results, ValidationError{
				Field:    "clients",
				Message:  fmt.Sprintf("deleting client %s requires a high-assurance session and may be skipped", c.Name),
				Severity: "warning",
			})
		}
	}
	return results
}

// checkGCSAuth warns when GCS resources are declared but the CLI will
// not find credentials in the environment.
func checkGCSAuth(cfg *config.Config) []ValidationError {
	if cfg.GCS == nil || cfg.Auth.Method == config.AuthMethodClientCredentials {
		return nil
	}
	return []ValidationError{{
		Field:    "gcs",
		Message:  "gcs resources are declared but auth.method is not client_credentials; the globus-connect-server CLI needs GCS_CLI_CLIENT_ID and GCS_CLI_CLIENT_SECRET",
		Severity: "warning",
	}}
}
