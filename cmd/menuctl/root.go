// Root command for the menuctl CLI.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/menus/internal/logging"
	"github.com/mesh-intelligence/menus/internal/paths"
)

// defaultEnvFile is loaded when present and --env-file is not given.
const defaultEnvFile = ".env"

// errUsage marks command-line mistakes.
var errUsage = errors.New("usage")

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagEnvFile   string
	flagLogLevel  string
	flagJSON      bool
)

// settings holds config.yaml merged with MENUS_* environment overrides.
// Set by PersistentPreRunE so all subcommands can use it.
var settings *viper.Viper

// logger is the process logger, built once settings are loaded.
var logger = logging.Discard()

var rootCmd = &cobra.Command{
	Use:           "menuctl",
	Short:         "menuctl manages navigation menus",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(flagEnvFile); err != nil {
			return err
		}

		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		settings, err = loadConfig(configDir)
		if err != nil {
			return err
		}

		level := settings.GetString(cfgKeyLogLevel)
		if flagLogLevel != "" {
			level = flagLogLevel
		}
		logger = logging.New(level, settings.GetString(cfgKeyLogFormat), cmd.ErrOrStderr())
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: <platform config dir>/"+paths.AppName+")")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: <platform data dir>/"+paths.AppName+")")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "dotenv file with MENUS_* overrides (default: ./.env when present)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadEnvFile loads path into the process environment without overriding
// variables already set. An empty path loads ./.env if it exists.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); err != nil {
			return nil
		}
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// resolveDataDir follows --data-dir > config.yaml data_dir > MENUS_DATA_DIR > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, settings.GetString(cfgKeyDataDir))
}

// resolveConfigDir follows --config-dir > MENUS_CONFIG_DIR > default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
