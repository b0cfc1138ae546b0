package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/m1yag1/globusctl/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the interactive configuration wizard.
	runWizard = config.RunWizard

	// writeFile writes data to a file.
	writeFile = os.WriteFile
)

// Init runs the configuration wizard and writes the result to a file.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := result.ToConfig()

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := writeFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, result)
	return nil
}

func printWelcome() {
	fmt.Println()
	fmt.Println("globusctl - declarative Globus resource management")
	fmt.Println("==================================================")
	fmt.Println()
	fmt.Println("This wizard creates a starter configuration.")
	fmt.Println("Edit the generated file to declare more resources.")
	fmt.Println()
}

func printInitSuccess(outputPath string, result *config.WizardResult) {
	fmt.Println()
	fmt.Printf("Configuration written to %s\n", outputPath)
	fmt.Println()
	if result.AuthMethod == config.AuthMethodClientCredentials {
		fmt.Println("Set GLOBUS_CLIENT_SECRET in the environment before applying.")
	}
	fmt.Println("Next steps:")
	fmt.Printf("  globusctl apply -c %s --check\n", outputPath)
	fmt.Printf("  globusctl apply -c %s\n", outputPath)
}
