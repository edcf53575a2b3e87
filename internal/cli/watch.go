// watch.go implements the "appenv watch" command: re-run injection
// whenever env files or public HTML change.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/appenv/internal/clientenv"
	"github.com/mmr-tortoise/appenv/internal/inject"
	"github.com/mmr-tortoise/appenv/internal/watcher"
)

// watchFlags holds the flag values for the watch command.
type watchFlags struct {
	mode   string // --mode
	outDir string // --out-dir
}

// NewWatchCommand creates the "watch" cobra command.
func NewWatchCommand() *cobra.Command {
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-inject on env file or HTML changes",
		Long: `Watch the project's env files and public HTML and re-run injection
whenever they change. The environment is re-resolved on every run, so
edits to any file in the chain take effect immediately.

Runs until interrupted (Ctrl-C).

Examples:
  appenv watch
  appenv watch --mode production`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "Mode to resolve for (development, production, test)")
	cmd.Flags().StringVarP(&flags.outDir, "out-dir", "o", "", "Output directory (default: from config)")

	return cmd
}

func runWatch(flags *watchFlags) error {
	// Validate the project once up front so a broken setup fails fast
	// instead of surfacing as a stream of watch errors.
	proj, err := loadProject(flags.mode)
	if err != nil {
		return err
	}

	outDir, err := resolveOutDir(proj, flags.outDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s (mode: %s), writing to %s\n", proj.dir, proj.mode, outDir)

	err = watcher.Watch(ctx, watcher.Config{
		Dirs:  []string{proj.dir, proj.publicDir()},
		Match: watcher.EnvFileMatcher(),
		OnChange: func() error {
			// Re-resolve from scratch: the change may be in any file of
			// the chain, or a newly created one.
			env, _, resolveErr := clientenv.Resolve(clientenv.Options{
				Dir:               proj.dir,
				Mode:              proj.mode,
				Prefix:            proj.config.Prefix,
				PublicURLFallback: proj.config.PublicURL,
			})
			if resolveErr != nil {
				return resolveErr
			}

			results, injectErr := inject.Dir(proj.publicDir(), outDir, env)
			if injectErr != nil {
				return injectErr
			}
			for _, res := range results {
				fmt.Printf("Wrote %s (%d token(s) replaced)\n", res.Path, res.Replaced)
			}
			return nil
		},
		OnError: func(watchErr error) {
			fmt.Fprintf(os.Stderr, "watch: %v\n", watchErr)
		},
	})

	// Interruption is the normal way to leave watch mode.
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
