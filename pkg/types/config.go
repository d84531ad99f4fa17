package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for opening a store.
type Config struct {
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// SyncTimeout bounds a single menu replacement, lock wait included.
	// Zero means no timeout beyond the caller's context.
	SyncTimeout time.Duration `json:"sync_timeout" yaml:"sync_timeout" mapstructure:"sync_timeout"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrSyncTimeoutInvalid = errors.New("sync timeout must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.SyncTimeout < 0 {
		return ErrSyncTimeoutInvalid
	}
	return nil
}
