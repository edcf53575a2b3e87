// inject.go implements the "appenv inject" command: substitute %VAR%
// tokens in HTML files and optionally emit runtime env snapshots.
package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/appenv/internal/inject"
)

// injectFlags holds the flag values for the inject command.
type injectFlags struct {
	mode     string // --mode
	outDir   string // --out-dir: override the configured output directory
	emitJS   bool   // --emit-js: also write env.js
	emitJSON bool   // --emit-json: also write env.json
}

// NewInjectCommand creates the "inject" cobra command.
func NewInjectCommand() *cobra.Command {
	flags := &injectFlags{}

	cmd := &cobra.Command{
		Use:   "inject [files...]",
		Short: "Substitute %VAR% tokens in HTML files",
		Long: `Substitute %VARIABLE_NAME% tokens in HTML files with resolved values.

Without arguments, every .html file under the public directory is
processed into the output directory, preserving the directory layout.
With arguments, only the named files are processed.

Substituted values are HTML-escaped. Tokens referencing undefined
variables are left as-is (run "appenv check" to find them).

Examples:
  appenv inject --mode production
  appenv inject public/index.html
  appenv inject --emit-js --emit-json`,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInject(args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "Mode to resolve for (development, production, test)")
	cmd.Flags().StringVarP(&flags.outDir, "out-dir", "o", "", "Output directory (default: from config)")
	cmd.Flags().BoolVar(&flags.emitJS, "emit-js", false, "Also write an env.js runtime snapshot")
	cmd.Flags().BoolVar(&flags.emitJSON, "emit-json", false, "Also write an env.json runtime snapshot")

	return cmd
}

func runInject(args []string, flags *injectFlags) error {
	proj, err := loadProject(flags.mode)
	if err != nil {
		return err
	}

	outDir, err := resolveOutDir(proj, flags.outDir)
	if err != nil {
		return err
	}

	var results []*inject.Result
	if len(args) == 0 {
		VerboseLog("Injecting %s -> %s", proj.publicDir(), outDir)
		if results, err = inject.Dir(proj.publicDir(), outDir, proj.env); err != nil {
			return err
		}
	} else {
		for _, arg := range args {
			src := arg
			if !filepath.IsAbs(src) {
				src = filepath.Join(proj.dir, src)
			}
			dst := filepath.Join(outDir, filepath.Base(src))
			VerboseLog("Injecting %s -> %s", src, dst)
			res, fileErr := inject.File(src, dst, proj.env)
			if fileErr != nil {
				return fileErr
			}
			results = append(results, res)
		}
	}

	if flags.emitJS {
		data, jsErr := inject.JSSnapshot(proj.env)
		if jsErr != nil {
			return jsErr
		}
		path := filepath.Join(outDir, "env.js")
		if err = inject.WriteSnapshot(path, data); err != nil {
			return err
		}
		results = append(results, &inject.Result{Path: path})
	}
	if flags.emitJSON {
		data, jsonErr := inject.JSONSnapshot(proj.env)
		if jsonErr != nil {
			return jsonErr
		}
		path := filepath.Join(outDir, "env.json")
		if err = inject.WriteSnapshot(path, data); err != nil {
			return err
		}
		results = append(results, &inject.Result{Path: path})
	}

	printInjectResults(results)
	return nil
}

// printInjectResults outputs the inject results in text or JSON format.
func printInjectResults(results []*inject.Result) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(data))
		return
	}

	for _, res := range results {
		fmt.Printf("Wrote %s (%d token(s) replaced)\n", res.Path, res.Replaced)
		for _, name := range res.Unresolved {
			fmt.Printf("  warning: unresolved token %%%s%%\n", name)
		}
	}
}
