// Init command for the menuctl CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration and storage",
	Long: `Init creates the configuration directory with a default config.yaml,
creates the data directory, and applies the database migrations.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		// PersistentPreRunE already wrote config.yaml if it was missing.

		backend, cfg, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		v, err := backend.SchemaVersion(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, map[string]any{
				"config_dir":     configDir,
				"data_dir":       cfg.DataDir,
				"schema_version": v,
			})
		}
		fmt.Fprintln(out, "menus initialized successfully")
		fmt.Fprintln(out, "  config:", configDir)
		fmt.Fprintln(out, "  data:  ", cfg.DataDir)
		fmt.Fprintln(out, "  schema:", v)
		return nil
	},
}
