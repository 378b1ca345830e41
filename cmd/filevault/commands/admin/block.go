package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Gaganb-30/cloud-store/internal/cli/prompt"
)

var blockForce bool

var blockCmd = &cobra.Command{
	Use:   "block <user-id>",
	Short: "Block a user account",
	Long: `Block a user account: every file the user owns is deleted from
storage and the metadata store, their quota usage is reset to zero, and
the account status is set to blocked. Upload and download requests whose
token carries the blocked status are then refused; other API routes do
not check account status. You will be prompted for confirmation unless
--force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runBlock,
}

func init() {
	blockCmd.Flags().BoolVarP(&blockForce, "force", "f", false, "Skip confirmation prompt")
}

func runBlock(cmd *cobra.Command, args []string) error {
	ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Block user %s?", args[0]), blockForce)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Aborted.")
		return nil
	}

	ctx := context.Background()
	configPath, _ := cmd.Flags().GetString("config")

	svc, err := connect(ctx, configPath)
	if err != nil {
		return err
	}
	defer svc.close()

	if err := svc.admin.Block(ctx, args[0]); err != nil {
		return fmt.Errorf("block failed: %w", err)
	}

	fmt.Printf("User %s blocked\n", args[0])
	return nil
}
