package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var restrictCmd = &cobra.Command{
	Use:   "restrict <user-id>",
	Short: "Restrict a user account",
	Long: `Restrict a user account. A restricted account can still download
but is denied new uploads, distinct from a fully blocked account.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestrict,
}

func runRestrict(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	configPath, _ := cmd.Flags().GetString("config")

	svc, err := connect(ctx, configPath)
	if err != nil {
		return err
	}
	defer svc.close()

	if err := svc.admin.Restrict(ctx, args[0]); err != nil {
		return fmt.Errorf("restrict failed: %w", err)
	}

	fmt.Printf("User %s restricted\n", args[0])
	return nil
}
