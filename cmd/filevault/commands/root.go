// Package commands implements the CLI commands for the FileVault server.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	admincmd "github.com/Gaganb-30/cloud-store/cmd/filevault/commands/admin"
	configcmd "github.com/Gaganb-30/cloud-store/cmd/filevault/commands/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "filevault",
	Short: "FileVault - self-hosted file hosting service",
	Long: `FileVault is a self-hosted file hosting and sharing service: chunked
and direct uploads, tiered blob storage, quotas, share links, and
background lifecycle management, served over a single HTTP API.

Use "filevault [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/filevault/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(configcmd.Cmd)
	rootCmd.AddCommand(admincmd.Cmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("filevault %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}
