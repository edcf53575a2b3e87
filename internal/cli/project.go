// project.go holds the shared project-loading sequence used by every
// subcommand: determine the project directory, read APPENV_* settings,
// load the project config, and resolve the client environment for the
// requested mode.
package cli

import (
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/appenv/internal/clientenv"
	"github.com/mmr-tortoise/appenv/internal/envfile"
	"github.com/mmr-tortoise/appenv/internal/model"
	"github.com/mmr-tortoise/appenv/internal/project"
)

// projectContext bundles everything a subcommand needs about the project
// it is operating on.
type projectContext struct {
	// dir is the absolute project root.
	dir string

	// settings are the APPENV_* tool settings.
	settings *project.Settings

	// config is the parsed appenv.json/appenv.yaml (defaults applied).
	config *project.Config

	// mode is the effective mode after flag/settings resolution.
	mode model.Mode

	// env is the resolved client environment.
	env *model.ClientEnv

	// chain is the loaded env file chain, for diagnostics.
	chain *envfile.Chain
}

// publicDir returns the absolute public directory path.
func (p *projectContext) publicDir() string {
	return filepath.Join(p.dir, p.config.PublicDir)
}

// outputDir returns the absolute output directory path.
func (p *projectContext) outputDir() string {
	return filepath.Join(p.dir, p.config.OutputDir)
}

// resolveOutDir picks the effective output directory: the --out-dir flag
// when set, otherwise the configured one. The flag is made absolute
// against the invocation directory so --chdir does not shift its meaning.
func resolveOutDir(proj *projectContext, flag string) (string, error) {
	if flag == "" {
		return proj.outputDir(), nil
	}
	return filepath.Abs(flag)
}

// loadProject runs the full loading sequence. modeFlag is the --mode flag
// value; empty means the APPENV_MODE setting (default "development").
func loadProject(modeFlag string) (*projectContext, error) {
	settings, err := project.LoadSettings()
	if err != nil {
		return nil, err
	}
	if settings.Verbose {
		verbose = true
	}

	dir := chdir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
		}
	}
	if dir, err = filepath.Abs(dir); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to resolve project directory", err)
	}
	if _, err = os.Stat(dir); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "project directory not found", err)
	}
	VerboseLog("Project directory: %s", dir)

	modeStr := modeFlag
	if modeStr == "" {
		modeStr = settings.Mode
	}
	mode, err := model.ParseMode(modeStr)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigInvalid, "invalid mode", err)
	}
	VerboseLog("Mode: %s", mode)

	cfg, err := project.Load(dir)
	if err != nil {
		return nil, err
	}
	VerboseLog("Prefix: %s, public dir: %s, output dir: %s", cfg.Prefix, cfg.PublicDir, cfg.OutputDir)

	env, chain, err := clientenv.Resolve(clientenv.Options{
		Dir:               dir,
		Mode:              mode,
		Prefix:            cfg.Prefix,
		PublicURLFallback: cfg.PublicURL,
	})
	if err != nil {
		return nil, err
	}
	for _, f := range chain.Files {
		VerboseLog("Loaded env file: %s (%d vars)", f.Name, len(f.Vars))
	}
	VerboseLog("Resolved %d client variable(s)", len(env.Vars))

	return &projectContext{
		dir:      dir,
		settings: settings,
		config:   cfg,
		mode:     mode,
		env:      env,
		chain:    chain,
	}, nil
}
