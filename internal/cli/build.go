// build.go implements the "appenv build" command: run the project's
// build command inside a Docker container with the resolved environment.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/appenv/internal/docker"
	"github.com/mmr-tortoise/appenv/internal/model"
)

// buildFlags holds the flag values for the build command.
type buildFlags struct {
	mode string // --mode (default: production for this command)
	pull bool   // --pull: pull the image even if present locally
}

// NewBuildCommand creates the "build" cobra command.
func NewBuildCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the project build in a container with the resolved environment",
		Long: `Run the project's build command inside a Docker container with the
resolved client environment injected. The project directory is
bind-mounted into the container, so build output lands on the host.

The image and command come from the "build" section of appenv.json or
appenv.yaml:

  build:
    image: node:22
    command: [npm, run, build]

Containers are labeled appenv.* for identification in docker ps, and the
build's exit code is propagated.

Examples:
  appenv build
  appenv build --mode development
  appenv build --pull`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, flags)
		},
	}

	// Builds default to production; development and test builds remain
	// available via the flag.
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", string(model.ModeProduction), "Mode to resolve for (development, production, test)")
	cmd.Flags().BoolVar(&flags.pull, "pull", false, "Pull the build image even if it exists locally")

	return cmd
}

func runBuild(cmd *cobra.Command, flags *buildFlags) error {
	proj, err := loadProject(flags.mode)
	if err != nil {
		return err
	}

	if proj.config.Build.Image == "" || len(proj.config.Build.Command) == 0 {
		return model.NewCLIError(
			model.ExitConfigInvalid,
			"no build configured: set build.image and build.command in appenv.json or appenv.yaml",
		)
	}

	ctx := cmd.Context()

	cli, err := docker.NewClient(proj.settings.DockerHost)
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	spec := docker.BuildSpec{
		Image:      proj.config.Build.Image,
		Command:    proj.config.Build.Command,
		ProjectDir: proj.dir,
		Workdir:    proj.config.Build.Workdir,
		Env:        proj.env.Environ(),
		Mode:       proj.mode,
		Pull:       flags.pull,
	}
	VerboseLog("Running %v in %s (workdir %s, %d env var(s))",
		spec.Command, spec.Image, spec.Workdir, len(spec.Env))

	code, err := docker.RunBuild(ctx, cli, spec)
	if err != nil {
		return err
	}
	if code != 0 {
		// Propagate the build's exit code as our own.
		return model.NewCLIError(
			model.ExitCode(code),
			fmt.Sprintf("build exited with code %d", code),
		)
	}

	fmt.Printf("Build succeeded (mode: %s)\n", proj.mode)
	return nil
}
