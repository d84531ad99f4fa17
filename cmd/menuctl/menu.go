// Menu commands create, list, show, rename and delete menus.
package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/menus/internal/menutree"
	"github.com/mesh-intelligence/menus/pkg/types"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Create, list, rename and delete menus",
}

var menuCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a menu",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, _, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		m := &types.Menu{Name: args[0]}
		if _, err := backend.CreateMenu(cmd.Context(), m); err != nil {
			return fmt.Errorf("create menu: %w", err)
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), m)
		}
		fmt.Fprintln(cmd.OutOrStdout(), m.MenuID)
		return nil
	},
}

var menuListCmd = &cobra.Command{
	Use:   "list",
	Short: "List menus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, _, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		menus, err := backend.ListMenus(cmd.Context())
		if err != nil {
			return fmt.Errorf("list menus: %w", err)
		}
		if flagJSON {
			if menus == nil {
				menus = []*types.Menu{}
			}
			return printJSON(cmd.OutOrStdout(), menus)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tUPDATED")
		for _, m := range menus {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.MenuID, m.Name, m.UpdatedAt.Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

var menuShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a menu and its item tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, _, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		m, err := backend.GetMenu(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get menu: %w", err)
		}
		items, err := backend.ListItems(cmd.Context(), m.MenuID)
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}
		roots := menutree.Build(items)

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, struct {
				*types.Menu
				Items []*menutree.TreeNode `json:"items"`
			}{m, roots})
		}
		fmt.Fprintf(out, "%s  %s  (%d items)\n", m.MenuID, m.Name, len(items))
		printTree(out, roots)
		return nil
	},
}

var menuRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a menu",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, _, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		if err := backend.RenameMenu(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("rename menu: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "renamed", args[0])
		return nil
	},
}

var menuDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a menu and all of its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, _, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		if err := backend.DeleteMenu(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete menu: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
		return nil
	},
}

func init() {
	menuCmd.AddCommand(menuCreateCmd, menuListCmd, menuShowCmd, menuRenameCmd, menuDeleteCmd)
}
