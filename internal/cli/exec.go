// exec.go implements the "appenv exec" command: run a child process with
// the resolved client environment merged over the inherited environment.
package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/appenv/internal/model"
)

// execFlags holds the flag values for the exec command.
type execFlags struct {
	mode string // --mode
}

// NewExecCommand creates the "exec" cobra command.
func NewExecCommand() *cobra.Command {
	flags := &execFlags{}

	cmd := &cobra.Command{
		Use:   "exec -- <command> [args...]",
		Short: "Run a command with the resolved environment",
		Long: `Run a command with the resolved client environment merged over the
inherited process environment. Resolved variables win over inherited
ones, so NODE_ENV always matches the mode inside the child.

The child's stdin, stdout, and stderr are passed through, and its exit
code is propagated.

Examples:
  appenv exec -- npm start
  appenv exec --mode test -- npm test
  appenv exec --mode production -- node scripts/build.js`,

		Args: cobra.MinimumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "Mode to resolve for (development, production, test)")

	return cmd
}

func runExec(args []string, flags *execFlags) error {
	proj, err := loadProject(flags.mode)
	if err != nil {
		return err
	}

	child := exec.Command(args[0], args[1:]...)
	child.Dir = proj.dir
	// Resolved variables are appended after the inherited environment;
	// for duplicate names the later entry wins, which gives the resolved
	// values priority inside the child.
	child.Env = append(os.Environ(), proj.env.Environ()...)
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr

	VerboseLog("Running %v with %d injected variable(s)", args, len(proj.env.Vars))
	if err := child.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			// Propagate the child's exit code as our own.
			return &model.CLIError{
				Code:    model.ExitCode(exitErr.ExitCode()),
				Message: fmt.Sprintf("command exited with code %d", exitErr.ExitCode()),
				Err:     err,
			}
		}
		return model.WrapCLIError(model.ExitChildFailed, fmt.Sprintf("failed to run %q", args[0]), err)
	}
	return nil
}
