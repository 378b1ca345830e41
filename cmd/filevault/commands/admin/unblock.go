package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var unblockCmd = &cobra.Command{
	Use:   "unblock <user-id>",
	Short: "Unblock or unrestrict a user account",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnblock,
}

func runUnblock(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	configPath, _ := cmd.Flags().GetString("config")

	svc, err := connect(ctx, configPath)
	if err != nil {
		return err
	}
	defer svc.close()

	if err := svc.admin.Unblock(ctx, args[0]); err != nil {
		return fmt.Errorf("unblock failed: %w", err)
	}

	fmt.Printf("User %s unblocked\n", args[0])
	return nil
}
