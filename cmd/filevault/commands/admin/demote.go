package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var demoteCmd = &cobra.Command{
	Use:   "demote <user-id>",
	Short: "Demote a user to the free role",
	Args:  cobra.ExactArgs(1),
	RunE:  runDemote,
}

func runDemote(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	configPath, _ := cmd.Flags().GetString("config")

	svc, err := connect(ctx, configPath)
	if err != nil {
		return err
	}
	defer svc.close()

	if err := svc.admin.Demote(ctx, args[0]); err != nil {
		return fmt.Errorf("demote failed: %w", err)
	}

	fmt.Printf("User %s demoted to free\n", args[0])
	return nil
}
