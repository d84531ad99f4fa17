// Items commands replace and show the item tree of a menu.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/wI2L/jsondiff"

	"github.com/mesh-intelligence/menus/internal/logging"
	"github.com/mesh-intelligence/menus/internal/menusync"
	"github.com/mesh-intelligence/menus/internal/menutree"
	"github.com/mesh-intelligence/menus/internal/sqlite"
	"github.com/mesh-intelligence/menus/pkg/types"
)

var (
	flagItemsFile   string
	flagItemsDryRun bool
	flagItemsWatch  bool
	flagItemsFlat   bool
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Replace and show menu item trees",
}

var itemsReplaceCmd = &cobra.Command{
	Use:   "replace <menu-id>",
	Short: "Replace the whole item tree of a menu",
	Long: `Replace discards every item of the menu and creates the tree read from
--file (a JSON array of nodes, or - for stdin) in one transaction.

With --dry-run nothing is written; the JSON Patch from the current tree to
the submitted one is printed instead. With --watch the file is applied again
every time it changes, until interrupted.

Example:
  menuctl items replace 0190c... --file main-menu.json
  cat main-menu.json | menuctl items replace 0190c... --file -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		menuID := args[0]
		if flagItemsWatch && (flagItemsFile == "" || flagItemsFile == "-") {
			return fmt.Errorf("%w: --watch needs a file path", errUsage)
		}

		backend, cfg, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		if flagItemsDryRun {
			raw, err := readInput(cmd, flagItemsFile)
			if err != nil {
				return err
			}
			return diffItems(cmd.Context(), cmd.OutOrStdout(), backend, menuID, raw)
		}

		sync := newSynchronizer(backend, cfg)
		if flagItemsWatch {
			return watchItems(cmd, sync, menuID, flagItemsFile)
		}

		raw, err := readInput(cmd, flagItemsFile)
		if err != nil {
			return err
		}
		return applyItems(cmd.Context(), cmd.OutOrStdout(), sync, menuID, raw)
	},
}

var itemsShowCmd = &cobra.Command{
	Use:   "show <menu-id>",
	Short: "Show the item tree of a menu",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, _, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		items, err := backend.ListItems(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}

		out := cmd.OutOrStdout()
		switch {
		case flagItemsFlat:
			if items == nil {
				items = []*types.MenuItem{}
			}
			return printJSON(out, items)
		case flagJSON:
			return printJSON(out, menutree.Build(items))
		default:
			printTree(out, menutree.Build(items))
			return nil
		}
	},
}

func init() {
	itemsReplaceCmd.Flags().StringVarP(&flagItemsFile, "file", "f", "", "JSON file with the item tree, - for stdin")
	itemsReplaceCmd.Flags().BoolVar(&flagItemsDryRun, "dry-run", false, "print the change as a JSON Patch without writing")
	itemsReplaceCmd.Flags().BoolVar(&flagItemsWatch, "watch", false, "re-apply the file whenever it changes")
	itemsShowCmd.Flags().BoolVar(&flagItemsFlat, "flat", false, "print stored rows in depth-first order as JSON")

	itemsCmd.AddCommand(itemsReplaceCmd, itemsShowCmd)
}

func applyItems(ctx context.Context, out io.Writer, sync *menusync.Synchronizer, menuID string, raw []byte) error {
	res, err := sync.ReplaceMenuItemsJSON(ctx, menuID, raw)
	if err != nil {
		return fmt.Errorf("replace items: %w", err)
	}
	if flagJSON {
		return printJSON(out, res)
	}
	fmt.Fprintf(out, "replaced %s: %d created, %d removed\n", menuID, res.Created, res.Purged)
	return nil
}

// diffItems prints the JSON Patch turning the stored tree into raw.
func diffItems(ctx context.Context, out io.Writer, b *sqlite.Backend, menuID string, raw []byte) error {
	next, err := menutree.Decode(raw)
	if err != nil {
		return err
	}
	items, err := b.ListItems(ctx, menuID)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	current := menutree.Descriptors(menutree.Build(items))
	patch, err := jsondiff.Compare(current, menutree.Canonical(next))
	if err != nil {
		return fmt.Errorf("diff items: %w", err)
	}
	if len(patch) == 0 {
		fmt.Fprintln(out, "no changes")
		return nil
	}
	body, err := json.MarshalIndent(patch, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal patch: %w", err)
	}
	fmt.Fprintln(out, string(body))
	return nil
}

// watchItems applies path once, then again on every write until the
// command is interrupted. Failed applies are logged and watching continues.
func watchItems(cmd *cobra.Command, sync *menusync.Synchronizer, menuID, path string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()
	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	apply := func() {
		raw, err := readInput(cmd, abs)
		if err == nil {
			err = applyItems(ctx, cmd.OutOrStdout(), sync, menuID, raw)
		}
		if err != nil {
			logger.Warn("watch apply failed", logging.MenuID(menuID), logging.Error(err))
		}
	}
	apply()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) == abs && ev.Has(fsnotify.Write|fsnotify.Create) {
				apply()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", logging.Error(err))
		}
	}
}

// printTree writes roots as an indented outline.
func printTree(out io.Writer, roots []*menutree.TreeNode) {
	type frame struct {
		node  *menutree.TreeNode
		depth int
	}
	var stack []frame
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fmt.Fprintf(out, "%s- %s\n", strings.Repeat("  ", f.depth), describe(&f.node.MenuItem))
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
}

func describe(it *types.MenuItem) string {
	var b strings.Builder
	b.WriteString(it.Title)
	if it.Type != types.ItemTypeCustom {
		b.WriteString(" [" + string(it.Type))
		if it.ReferenceID != nil {
			b.WriteString(" " + *it.ReferenceID)
		}
		b.WriteString("]")
	}
	if it.URL != nil {
		b.WriteString(" -> " + *it.URL)
	}
	if it.Target == types.TargetBlank {
		b.WriteString(" (new tab)")
	}
	return b.String()
}
