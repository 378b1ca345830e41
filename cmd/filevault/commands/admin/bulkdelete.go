package admin

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Gaganb-30/cloud-store/internal/cli/output"
	"github.com/Gaganb-30/cloud-store/internal/cli/prompt"
)

var bulkDeleteForce bool

var bulkDeleteCmd = &cobra.Command{
	Use:   "bulk-delete <file-id>...",
	Short: "Delete multiple files by ID",
	Long: `Delete up to 100 files in one call. Each file is handled
best-effort: a missing file is skipped, not treated as an error.

This action is irreversible. You will be asked to type "delete" to
confirm unless --force is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBulkDelete,
}

func init() {
	bulkDeleteCmd.Flags().BoolVarP(&bulkDeleteForce, "force", "f", false, "Skip confirmation prompt")
}

type deleteRows struct {
	deleted []string
	skipped [][2]string
	failed  [][2]string
}

func (d deleteRows) Headers() []string {
	return []string{"STATUS", "FILE ID", "REASON"}
}

func (d deleteRows) Rows() [][]string {
	rows := make([][]string, 0, len(d.deleted)+len(d.skipped)+len(d.failed))
	for _, id := range d.deleted {
		rows = append(rows, []string{"deleted", id, ""})
	}
	for _, s := range d.skipped {
		rows = append(rows, []string{"skipped", s[0], s[1]})
	}
	for _, f := range d.failed {
		rows = append(rows, []string{"failed", f[0], f[1]})
	}
	return rows
}

func runBulkDelete(cmd *cobra.Command, args []string) error {
	if !bulkDeleteForce {
		ok, err := prompt.ConfirmDanger(fmt.Sprintf("Delete %d file(s)", len(args)), "delete")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	ctx := context.Background()
	configPath, _ := cmd.Flags().GetString("config")

	svc, err := connect(ctx, configPath)
	if err != nil {
		return err
	}
	defer svc.close()

	result, err := svc.admin.BulkDelete(ctx, args)
	if err != nil {
		return fmt.Errorf("bulk delete failed: %w", err)
	}

	rows := deleteRows{deleted: result.Deleted}
	for _, s := range result.Skipped {
		rows.skipped = append(rows.skipped, [2]string{s.ID, s.Reason})
	}
	for _, f := range result.Failed {
		rows.failed = append(rows.failed, [2]string{f.ID, f.Reason})
	}

	return output.PrintTable(os.Stdout, rows)
}
