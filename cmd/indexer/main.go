package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"
	banner  = `
╔═══════════════════════════════════════════╗
║        OnTicket chain indexer v%s      ║
╚═══════════════════════════════════════════╝
`
)

// Exit codes of the operator commands.
const (
	exitOK         = 0
	exitUsage      = 1
	exitDownstream = 2
)

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func usageError(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

func downstreamError(err error) error {
	return &exitError{code: exitDownstream, err: err}
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUsage
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "indexer",
		Short: "OnTicket chain indexer",
		Long: `Follows the OnTicket contracts on an EVM chain and commits their raw logs,
staying a fixed number of blocks behind the head. Contract addresses are read from
the contract_registry table and reloaded whenever an update is announced on redis.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), banner, version)
			return runIndexer(cmd.Context(), configPath)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to a configuration file (.yaml, .json or .toml); OT_* environment variables override it")

	rootCmd.AddCommand(
		newUpdateRegistryCmd(&configPath),
		newSeedRegistryCmd(&configPath),
		newConfigSchemaCmd(),
		newListProjectorsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)

	return rootCmd
}
