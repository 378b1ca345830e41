package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var promoteMonths int

var promoteCmd = &cobra.Command{
	Use:   "promote <user-id>",
	Short: "Promote a user to premium",
	Long: `Promote a user's account to the premium role, optionally for a
fixed number of months. Without --months the promotion does not expire
on its own; it lasts until demoted.

Examples:
  filevault admin promote usr_123
  filevault admin promote usr_123 --months 12`,
	Args: cobra.ExactArgs(1),
	RunE: runPromote,
}

func init() {
	promoteCmd.Flags().IntVar(&promoteMonths, "months", 0, "Premium duration in months (0 = indefinite)")
}

func runPromote(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	configPath, _ := cmd.Flags().GetString("config")

	svc, err := connect(ctx, configPath)
	if err != nil {
		return err
	}
	defer svc.close()

	var months *int
	if promoteMonths > 0 {
		months = &promoteMonths
	}

	if err := svc.admin.Promote(ctx, args[0], months); err != nil {
		return fmt.Errorf("promote failed: %w", err)
	}

	fmt.Printf("User %s promoted to premium\n", args[0])
	return nil
}
