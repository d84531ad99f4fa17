// Export and import commands for JSONL snapshots.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/menus/internal/sqlite"
)

var flagTransferDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all menus and items as JSONL files",
	Long: `Export writes ` + sqlite.MenusFile + ` and ` + sqlite.MenuItemsFile + ` into --dir from one
consistent snapshot. Items are written parents first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagTransferDir == "" {
			return fmt.Errorf("%w: --dir is required", errUsage)
		}
		backend, _, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		if err := backend.Export(cmd.Context(), flagTransferDir); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "exported to", flagTransferDir)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load menus and items from JSONL files",
	Long: `Import reads the files written by export. Menus that already exist are
kept, and items whose menu or parent is missing are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagTransferDir == "" {
			return fmt.Errorf("%w: --dir is required", errUsage)
		}
		backend, _, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		st, err := backend.Import(cmd.Context(), flagTransferDir)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), st)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d menus and %d items (skipped %d menus, %d items)\n",
			st.Menus, st.Items, st.SkippedMenus, st.SkippedItems)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagTransferDir, "dir", "", "directory holding the JSONL files")
	importCmd.Flags().StringVar(&flagTransferDir, "dir", "", "directory holding the JSONL files")
}
