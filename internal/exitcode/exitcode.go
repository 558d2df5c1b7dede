// Package exitcode defines exit codes for the CLI.
package exitcode

// Exit codes returned by tasklist.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, out of range, not found, ambiguous).
	UserError = 1

	// ConfigError indicates an auth or configuration error.
	ConfigError = 2

	// StorageError indicates a storage backend or network error.
	StorageError = 3
)
