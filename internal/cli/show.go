// show.go implements the "appenv show" command: resolve the client
// environment for a mode and print it.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/appenv/internal/clientenv"
)

// showFlags holds the flag values for the show command.
type showFlags struct {
	mode   string // --mode: development, production, or test
	format string // --format: text, json, yaml, or dotenv
}

// NewShowCommand creates the "show" cobra command.
func NewShowCommand() *cobra.Command {
	flags := &showFlags{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Resolve and print the client environment",
		Long: `Resolve the client environment for a mode and print it.

The output includes every variable that would be injected into a build:
prefixed variables from the env file chain and the shell, plus NODE_ENV
and PUBLIC_URL. The text format also shows where each value came from.

Examples:
  appenv show
  appenv show --mode production
  appenv show --format dotenv > resolved.env
  appenv show --format json | jq '.vars[].name'`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "Mode to resolve for (development, production, test)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", clientenv.FormatText, "Output format (text, json, yaml, dotenv)")

	return cmd
}

func runShow(flags *showFlags) error {
	proj, err := loadProject(flags.mode)
	if err != nil {
		return err
	}

	format := flags.format
	// The global --json flag forces JSON regardless of --format.
	if IsJSONOutput() {
		format = clientenv.FormatJSON
	}

	out, err := clientenv.Render(proj.env, format)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
