// Command menuctl administers navigation menus: it creates menus, replaces
// their item trees, and serves the HTTP API.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/menus/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "menuctl:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode separates bad input from failures of the store or the system.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errUsage),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidName),
		errors.Is(err, types.ErrInvalidItems):
		return exitUserError
	default:
		return exitSysError
	}
}
