// Package envfile loads the dotenv file chain for a project and merges it
// with the process environment.
//
// The file naming convention and precedence follow the de-facto front-end
// tooling standard:
//
//	.env                     defaults, committed to the repository
//	.env.local               local overrides for all modes except test
//	.env.<mode>              mode-specific defaults
//	.env.<mode>.local        mode-specific local overrides
//
// Files on the left of the precedence list win over files on the right,
// and variables already defined in the process environment win over any
// file. Parsing is delegated to github.com/subosito/gotenv, which handles
// quoting, comments, `export` prefixes, and `$VAR`/`${VAR}` expansion
// against earlier definitions in the same file.
package envfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/subosito/gotenv"

	"github.com/mmr-tortoise/appenv/internal/model"
)

// File is one parsed env file from the chain.
type File struct {
	// Path is the absolute or project-relative path the file was read from.
	Path string

	// Name is the base file name (e.g. ".env.production.local"), used as
	// the Source of variables this file contributes.
	Name string

	// Vars holds the parsed name→value pairs.
	Vars map[string]string
}

// Chain is the ordered set of env files for one mode.
// Files are ordered highest priority first.
type Chain struct {
	Mode  model.Mode
	Files []File
}

// FilesForMode returns the env file paths that participate in resolution
// for the given mode, highest priority first.
//
// .env.local is intentionally absent from the test mode list: tests are
// expected to produce the same results for everyone, so per-machine local
// overrides must not leak into them.
func FilesForMode(dir string, mode model.Mode) []string {
	names := namesForMode(mode)
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths
}

// namesForMode returns the base file names for a mode, highest priority first.
func namesForMode(mode model.Mode) []string {
	if mode == model.ModeTest {
		return []string{".env.test.local", ".env.test", ".env"}
	}
	return []string{
		fmt.Sprintf(".env.%s.local", mode),
		".env.local",
		fmt.Sprintf(".env.%s", mode),
		".env",
	}
}

// Load reads and parses every env file in the chain for dir and mode.
// Missing files are skipped silently; a file that exists but cannot be
// read or parsed is an error (ExitEnvFileInvalid).
func Load(dir string, mode model.Mode) (*Chain, error) {
	chain := &Chain{Mode: mode}

	for _, path := range FilesForMode(dir, mode) {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, model.WrapCLIError(
				model.ExitEnvFileInvalid,
				fmt.Sprintf("failed to read env file %s", path),
				err,
			)
		}

		vars, parseErr := gotenv.StrictParse(f)
		_ = f.Close()
		if parseErr != nil {
			return nil, model.WrapCLIError(
				model.ExitEnvFileInvalid,
				fmt.Sprintf("failed to parse env file %s", path),
				parseErr,
			)
		}

		chain.Files = append(chain.Files, File{
			Path: path,
			Name: filepath.Base(path),
			Vars: vars,
		})
	}

	return chain, nil
}

// Merge combines the chain with the process environment into a single
// variable map keyed by name.
//
// Precedence, highest first: process environment, then chain files in
// their listed order. A name is assigned once and never overwritten,
// which is exactly "first definition wins" over the precedence order.
//
// The environ parameter takes os.Environ()-style "NAME=value" strings so
// callers (and tests) control exactly which process environment is seen.
func (c *Chain) Merge(environ []string) map[string]model.Variable {
	merged := make(map[string]model.Variable)

	// Process environment first: shell always beats files.
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		if _, defined := merged[name]; defined {
			continue
		}
		merged[name] = model.Variable{Name: name, Value: value, Source: model.SourceShell}
	}

	// Chain files are already ordered highest priority first.
	for _, file := range c.Files {
		for name, value := range file.Vars {
			if _, defined := merged[name]; defined {
				continue
			}
			merged[name] = model.Variable{Name: name, Value: value, Source: file.Name}
		}
	}

	return merged
}

// Defines reports whether any file in the chain defines name, and returns
// the file that does. Used by lint diagnostics.
func (c *Chain) Defines(name string) (File, bool) {
	for _, file := range c.Files {
		if _, ok := file.Vars[name]; ok {
			return file, true
		}
	}
	return File{}, false
}
