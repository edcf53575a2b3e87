// Package cli implements the cobra-based CLI commands for appenv.
//
// Each subcommand (show, inject, check, exec, watch, build) is defined in
// its own file within this package. This file defines the root command
// that serves as the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/appenv/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose enables detailed logging output on stderr. It can also be
	// turned on via the APPENV_VERBOSE environment variable.
	verbose bool

	// chdir switches to the given project directory before running.
	chdir string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// The root command itself does not perform any action — it only provides
// help text and global flags.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "appenv",
		Short: "Build-time environment resolver and injector for front-end projects",
		Long: `appenv resolves the client-visible environment for a front-end project
from its dotenv file chain (.env, .env.local, .env.<mode>, .env.<mode>.local)
and the shell, then injects it into builds: %VAR% tokens in HTML, runtime
env.js/env.json snapshots, child processes, and containerized builds.

Only variables carrying the configured prefix (default REACT_APP_), plus
NODE_ENV and PUBLIC_URL, ever reach the client.`,

		// We handle error output ourselves for cleaner UX, so cobra's
		// automatic usage and error printing are both disabled.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&chdir, "chdir", "C", "", "Project directory (default: current directory)")

	rootCmd.AddCommand(NewShowCommand())
	rootCmd.AddCommand(NewInjectCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewExecCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewBuildCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// CLIError values carry their own exit codes; other errors default to 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode; stdout is reserved for
		// successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
