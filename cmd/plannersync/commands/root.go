// Package commands wires the plannersync CLI: one file per command, all
// registered on the root command here.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/plannersync/internal/store"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitNotFound = 3
	ExitInternal = 10
)

var (
	version string
	commit  string
	date    string
)

// Global flags, applied over the loaded config.
var (
	flagConfig     string
	flagVault      string
	flagDataFile   string
	flagDataFormat string
	flagLogLevel   string
	flagLogFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "plannersync",
	Short: "Task planner with Obsidian vault sync",
	Long: `plannersync keeps a multi-project task list and mirrors every task
into a Markdown note inside an Obsidian vault. Edits made in the vault
flow back into the task list; edits made here flow out to the vault.

State lives in a single JSON or YAML file by default, or in Redis when
several machines share one planner.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and maps the error to an exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return exitCode(err)
}

// exitCode maps sentinel errors onto the process exit codes.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, store.ErrInvalid):
		return ExitUsage
	case errors.Is(err, store.ErrNotFound):
		return ExitNotFound
	}
	return ExitInternal
}

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default: plannersync.toml lookup)")
	pf.StringVar(&flagVault, "vault", "", "vault folder receiving task notes")
	pf.StringVar(&flagDataFile, "data-file", "", "workspace state file")
	pf.StringVar(&flagDataFormat, "data-format", "", "state file format (json or yaml)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "", "log format (text, json, logfmt)")
}

// exactArgs is cobra.ExactArgs with the error routed through ErrInvalid so
// argument mistakes exit with the usage code.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s expects %d argument(s), got %d", store.ErrInvalid, cmd.Name(), n, len(args))
		}
		return nil
	}
}

// minArgs mirrors cobra.MinimumNArgs the same way.
func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return fmt.Errorf("%w: %s expects at least %d argument(s)", store.ErrInvalid, cmd.Name(), n)
		}
		return nil
	}
}

// notFoundErr builds the CLI-facing wrapper for a missing task id.
func notFoundErr(id string) error {
	return fmt.Errorf("%w: task %s", store.ErrNotFound, id)
}
