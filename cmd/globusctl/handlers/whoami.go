package handlers

import (
	"context"
	"fmt"
)

// Whoami prints the identity the configured auth method resolves to.
// It is a quick way to verify credentials before an apply.
func Whoami(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	client := newGlobusClient(cfg, false)
	identity, err := client.Whoami(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve identity: %w", err)
	}

	fmt.Printf("Username: %s\n", identity.Username)
	fmt.Printf("ID:       %s\n", identity.ID)
	if identity.Name != "" {
		fmt.Printf("Name:     %s\n", identity.Name)
	}
	if identity.Email != "" {
		fmt.Printf("Email:    %s\n", identity.Email)
	}
	fmt.Printf("Method:   %s\n", cfg.Auth.Method)

	return nil
}
