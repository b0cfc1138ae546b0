package config

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"
)

// WizardResult holds the user's choices from the init wizard.
type WizardResult struct {
	AuthMethod   string
	ClientID     string
	ProjectName  string
	ContactEmail string
	GroupName    string
	ManageGCS    bool
}

// RunWizard runs the interactive starter configuration wizard.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		AuthMethod: AuthMethodCLI,
	}

	form := huh.NewForm(
		// Authentication
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Authentication method").
				Description("cli reuses tokens from a logged-in Globus CLI session").
				Options(
					huh.NewOption("Globus CLI token file", AuthMethodCLI),
					huh.NewOption("OAuth client credentials", AuthMethodClientCredentials),
					huh.NewOption("Bearer access token", AuthMethodAccessToken),
				).
				Value(&result.AuthMethod),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Client ID").
				Description("OAuth client UUID used for the client_credentials grant").
				Placeholder("00000000-0000-0000-0000-000000000000").
				Value(&result.ClientID).
				Validate(func(s string) error {
					return validateUUID("client_id", s)
				}),
		).WithHideFunc(func() bool {
			return result.AuthMethod != AuthMethodClientCredentials
		}),

		// Starter resources
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Description("The Globus Auth project to manage").
				Placeholder("my-project").
				Value(&result.ProjectName).
				Validate(validateResourceName),

			huh.NewInput().
				Title("Contact email").
				Description("Administrative contact for the project").
				Placeholder("admin@example.org").
				Value(&result.ContactEmail).
				Validate(validateEmail),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Group name (optional)").
				Description("A group to create alongside the project. Leave empty to skip.").
				Value(&result.GroupName),
		),

		huh.NewGroup(
			huh.NewConfirm().
				Title("Manage a Globus Connect Server endpoint?").
				Description("Adds a gcs section driven by the globus-connect-server CLI on this host").
				Value(&result.ManageGCS),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	return result, nil
}

// ToConfig converts the wizard result into a starter configuration.
func (r *WizardResult) ToConfig() *Config {
	cfg := &Config{
		Auth: AuthConfig{Method: r.AuthMethod},
		Projects: []ProjectSpec{{
			Name:         r.ProjectName,
			ContactEmail: r.ContactEmail,
			State:        StatePresent,
		}},
	}

	if r.AuthMethod == AuthMethodClientCredentials {
		cfg.Auth.ClientID = r.ClientID
		cfg.Auth.ClientSecretEnv = "GLOBUS_CLIENT_SECRET"
	}

	if r.GroupName != "" {
		cfg.Groups = []GroupSpec{{
			Name:       r.GroupName,
			Visibility: "private",
			State:      StatePresent,
		}}
	}

	if r.ManageGCS {
		cfg.GCS = &GCSConfig{
			Endpoint: &GCSEndpointSpec{
				DisplayName:  r.ProjectName,
				ContactEmail: r.ContactEmail,
				State:        StatePresent,
			},
			Node: &GCSNodeSpec{State: StatePresent},
		}
	}

	return cfg
}

// Marshal renders the configuration as YAML suitable for writing to
// globus.yaml.
func (c *Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}

func validateResourceName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name is required")
	}
	if len(s) > 128 {
		return fmt.Errorf("name must be 128 characters or less")
	}
	return nil
}

func validateEmail(s string) error {
	if s == "" {
		return fmt.Errorf("contact email is required")
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
