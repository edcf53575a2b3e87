// check.go implements the "appenv check" command: lint the project's env
// files and HTML templates.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/appenv/internal/lint"
	"github.com/mmr-tortoise/appenv/internal/model"
)

// checkFlags holds the flag values for the check command.
type checkFlags struct {
	mode string // --mode
}

// NewCheckCommand creates the "check" cobra command.
func NewCheckCommand() *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Lint env files and HTML templates",
		Long: `Check the project for environment mistakes that fail silently at
build time:

  - env file variables missing the client prefix (never reach the client)
  - client variables with secret-looking names (end up readable by every
    user of the built app)
  - NODE_ENV definitions in env files (always ignored)
  - %TOKEN% references in HTML that nothing resolves

Exits with code 5 when findings exist, so CI can gate on it.

Examples:
  appenv check
  appenv check --mode production --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "Mode to resolve for (development, production, test)")

	return cmd
}

func runCheck(flags *checkFlags) error {
	proj, err := loadProject(flags.mode)
	if err != nil {
		return err
	}

	findings, err := lint.Check(proj.env, proj.chain, proj.publicDir())
	if err != nil {
		return err
	}

	printFindings(findings)
	if len(findings) > 0 {
		return model.NewCLIError(
			model.ExitLintFindings,
			fmt.Sprintf("%d problem(s) found", len(findings)),
		)
	}
	return nil
}

// printFindings outputs findings in text or JSON format. JSON mode always
// prints an array (possibly empty) so consumers can parse unconditionally.
func printFindings(findings []lint.Finding) {
	if IsJSONOutput() {
		if findings == nil {
			findings = []lint.Finding{}
		}
		data, _ := json.MarshalIndent(findings, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(findings) == 0 {
		fmt.Println("No problems found")
		return
	}
	for _, f := range findings {
		fmt.Println(f.String())
	}
}
