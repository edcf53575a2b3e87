// Package project loads the per-project appenv configuration.
//
// Configuration is optional and lives in the project root as either
// appenv.json (JSONC — comments and trailing commas are allowed, stripped
// with github.com/tidwall/jsonc before parsing) or appenv.yaml. When both
// exist, appenv.json wins and appenv.yaml is ignored.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/appenv/internal/model"
)

// Default values applied when the config file is absent or a field is empty.
const (
	// DefaultPublicDir is where HTML templates with %VAR% tokens live.
	DefaultPublicDir = "public"

	// DefaultOutputDir is where injected files are written.
	DefaultOutputDir = "build"
)

// Config is the parsed project configuration.
type Config struct {
	// Prefix is the required variable name prefix for client variables.
	// Defaults to model.DefaultPrefix.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// PublicDir is the directory containing the HTML files to inject,
	// relative to the project root.
	PublicDir string `json:"publicDir,omitempty" yaml:"publicDir,omitempty"`

	// OutputDir is the directory injected files are written to,
	// relative to the project root.
	OutputDir string `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`

	// PublicURL is the fallback value for the PUBLIC_URL variable when
	// neither the shell nor an env file defines it.
	PublicURL string `json:"publicUrl,omitempty" yaml:"publicUrl,omitempty"`

	// Build configures the containerized build command.
	Build BuildConfig `json:"build,omitempty" yaml:"build,omitempty"`
}

// BuildConfig holds the settings for the "appenv build" command, which
// runs the project's build inside a Docker container with the resolved
// environment injected.
type BuildConfig struct {
	// Image is the container image the build runs in (e.g. "node:22").
	Image string `json:"image,omitempty" yaml:"image,omitempty"`

	// Command is the build command and its arguments.
	Command []string `json:"command,omitempty" yaml:"command,omitempty"`

	// Workdir is the path the project is mounted at inside the container.
	// Defaults to "/workspace".
	Workdir string `json:"workdir,omitempty" yaml:"workdir,omitempty"`
}

// DefaultWorkdir is the in-container mount point for the project when
// BuildConfig.Workdir is not set.
const DefaultWorkdir = "/workspace"

// Candidate config file names in priority order.
var configNames = []string{"appenv.json", "appenv.yaml"}

// Load reads the project configuration from dir. A missing config file is
// not an error — the returned Config then carries only defaults. A config
// file that exists but cannot be parsed or validated is an
// ExitConfigInvalid error.
func Load(dir string) (*Config, error) {
	cfg := &Config{}

	for _, name := range configNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, model.WrapCLIError(
				model.ExitConfigInvalid,
				fmt.Sprintf("failed to read %s", path),
				err,
			)
		}

		if parseErr := parseConfig(name, data, cfg); parseErr != nil {
			return nil, model.WrapCLIError(
				model.ExitConfigInvalid,
				fmt.Sprintf("failed to parse %s", path),
				parseErr,
			)
		}
		break
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigInvalid, "invalid project config", err)
	}
	return cfg, nil
}

// parseConfig dispatches on the file extension. appenv.json is JSONC, so
// comments are stripped before handing the bytes to encoding/json.
func parseConfig(name string, data []byte, cfg *Config) error {
	if strings.HasSuffix(name, ".json") {
		return json.Unmarshal(jsonc.ToJSON(data), cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// applyDefaults fills empty fields with their documented defaults.
func (c *Config) applyDefaults() {
	if c.Prefix == "" {
		c.Prefix = model.DefaultPrefix
	}
	if c.PublicDir == "" {
		c.PublicDir = DefaultPublicDir
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Build.Workdir == "" {
		c.Build.Workdir = DefaultWorkdir
	}
}

// validate rejects configurations that would produce confusing behavior
// later (an unusable prefix filter, or a build command without an image).
func (c *Config) validate() error {
	// The prefix itself must be a valid variable name head so that
	// prefix+NAME stays a valid name.
	if !model.ValidVarName(strings.TrimSuffix(c.Prefix, "_") + "_X") {
		return fmt.Errorf("prefix %q is not a valid variable name prefix", c.Prefix)
	}
	if len(c.Build.Command) > 0 && c.Build.Image == "" {
		return fmt.Errorf("build.command is set but build.image is empty")
	}
	return nil
}
