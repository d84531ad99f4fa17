// Shared helpers for menuctl commands.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/menus/internal/menusync"
	"github.com/mesh-intelligence/menus/internal/sqlite"
	"github.com/mesh-intelligence/menus/pkg/types"
)

// storeConfig builds the backend configuration from flags and settings.
func storeConfig() (types.Config, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg := types.Config{
		Backend:     settings.GetString(cfgKeyBackend),
		DataDir:     dataDir,
		SyncTimeout: settings.GetDuration(cfgKeySyncTimeout),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("%w: %w", errUsage, err)
	}
	return cfg, nil
}

// openBackend opens the SQLite backend. The caller must Close it.
func openBackend() (*sqlite.Backend, types.Config, error) {
	cfg, err := storeConfig()
	if err != nil {
		return nil, cfg, err
	}
	backend := sqlite.NewBackend()
	if err := backend.Open(cfg); err != nil {
		return nil, cfg, fmt.Errorf("open backend: %w", err)
	}
	return backend, cfg, nil
}

func newSynchronizer(b *sqlite.Backend, cfg types.Config, opts ...menusync.Option) *menusync.Synchronizer {
	base := []menusync.Option{
		menusync.WithLogger(logger),
		menusync.WithTimeout(cfg.SyncTimeout),
	}
	return menusync.New(b, b, append(base, opts...)...)
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// readInput reads path, or standard input when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: --file is required (use - for stdin)", errUsage)
	}
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
