// Package inject performs build-time substitution of %VARIABLE_NAME%
// tokens in static HTML and emits runtime environment snapshots.
//
// Substitution is purely textual: each %NAME% token whose NAME exists in
// the resolved client environment is replaced with the HTML-escaped value.
// Tokens that reference undefined variables are left untouched — they are
// surfaced as findings by the check command rather than silently erased,
// so a typoed token stays visible in the output.
//
// All files are written atomically with github.com/google/renameio/v2: a
// crashed or interrupted run never leaves a half-written file in the
// output directory.
package inject

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/renameio/v2"

	"github.com/mmr-tortoise/appenv/internal/model"
)

// tokenPattern matches %VARIABLE_NAME% tokens. The name grammar matches
// model.ValidVarName so that stray percent signs in content (e.g. "100%")
// are never treated as tokens.
var tokenPattern = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

// Result describes what a single HTML injection did.
type Result struct {
	// Path is the output file path that was written.
	Path string `json:"path"`

	// Replaced is the number of token occurrences substituted.
	Replaced int `json:"replaced"`

	// Unresolved lists token names that had no matching variable,
	// deduplicated, in first-seen order.
	Unresolved []string `json:"unresolved,omitempty"`
}

// HTML substitutes tokens in content against env and returns the new
// content along with the substitution counts. It never fails: undefined
// tokens pass through unchanged and are reported in the counts.
func HTML(content []byte, env *model.ClientEnv) ([]byte, int, []string) {
	replaced := 0
	var unresolved []string
	seen := make(map[string]bool)

	out := tokenPattern.ReplaceAllFunc(content, func(token []byte) []byte {
		name := string(token[1 : len(token)-1])
		value, ok := env.Lookup(name)
		if !ok {
			if !seen[name] {
				seen[name] = true
				unresolved = append(unresolved, name)
			}
			return token
		}
		replaced++
		return []byte(html.EscapeString(value))
	})

	return out, replaced, unresolved
}

// File injects one HTML file from src to dst, creating dst's parent
// directories as needed. Returns ExitInjectTargetMissing when src does
// not exist.
func File(src, dst string, env *model.ClientEnv) (*Result, error) {
	content, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitInjectTargetMissing,
				fmt.Sprintf("inject target not found: %s", src),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read %s: %w", src, err)
	}

	out, replaced, unresolved := HTML(content, env)

	if err := writeAtomic(dst, out); err != nil {
		return nil, err
	}

	return &Result{Path: dst, Replaced: replaced, Unresolved: unresolved}, nil
}

// Dir injects every .html file under srcDir into dstDir, preserving the
// relative directory layout. Non-HTML files are ignored — the build tool
// that consumes the output is responsible for copying other assets.
func Dir(srcDir, dstDir string, env *model.ClientEnv) ([]*Result, error) {
	if _, err := os.Stat(srcDir); err != nil {
		return nil, model.WrapCLIError(
			model.ExitInjectTargetMissing,
			fmt.Sprintf("public directory not found: %s", srcDir),
			err,
		)
	}

	var results []*Result
	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || filepath.Ext(path) != ".html" {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		res, err := File(path, filepath.Join(dstDir, rel), env)
		if err != nil {
			return err
		}
		results = append(results, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// writeAtomic writes data to path via a temp file and rename, creating
// parent directories first.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
