package config

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Gaganb-30/cloud-store/internal/cli/output"
	"github.com/Gaganb-30/cloud-store/pkg/config"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the current FileVault configuration.

By default outputs YAML. Use --output to change format.

Examples:
  # Show default config as YAML
  filevault config show

  # Show as JSON
  filevault config show --output json

  # Show a specific config file
  filevault config show --config /etc/filevault/config.yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	switch showOutput {
	case "json":
		return output.PrintJSON(os.Stdout, cfg)
	default:
		return output.PrintYAML(os.Stdout, cfg)
	}
}
