package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Gaganb-30/cloud-store/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the FileVault configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  filevault config validate

  # Validate a specific config file
  filevault config validate --config /etc/filevault/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if len(cfg.Auth.JWTSecret) < 32 {
		warnings = append(warnings, "JWT secret is shorter than 32 characters")
	}
	if cfg.Storage.Provider == "s3" && cfg.Storage.S3Bucket == "" {
		warnings = append(warnings, "storage provider is s3 but no bucket is configured")
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.Backend == "badger" && cfg.RateLimit.BadgerPath == "" {
		warnings = append(warnings, "rate limit backend is badger but no badger_path is configured")
	}

	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Database driver: %s\n", cfg.Database.Driver)
	fmt.Printf("  Storage provider: %s\n", cfg.Storage.Provider)
	fmt.Printf("  Server addr:      %s\n", cfg.Server.Addr)
	fmt.Printf("  Log level:        %s\n", cfg.Logging.Level)

	return nil
}
