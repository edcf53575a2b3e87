package project

import (
	"github.com/caarlos0/env/v11"

	"github.com/mmr-tortoise/appenv/internal/model"
)

// Settings are tool-level options read from the process environment.
// Unlike Config, these belong to the machine running appenv rather than
// to the project, so they live in APPENV_* environment variables instead
// of a committed config file.
type Settings struct {
	// Verbose turns on verbose logging without passing --verbose.
	Verbose bool `env:"APPENV_VERBOSE"`

	// DockerHost overrides Docker socket auto-detection for the build
	// command. Same syntax as DOCKER_HOST (e.g. "unix:///run/docker.sock").
	DockerHost string `env:"APPENV_DOCKER_HOST"`

	// Mode sets the default --mode value for all commands.
	Mode string `env:"APPENV_MODE" envDefault:"development"`
}

// LoadSettings parses Settings from the process environment.
func LoadSettings() (*Settings, error) {
	settings := &Settings{}
	if err := env.Parse(settings); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigInvalid, "invalid APPENV_* environment", err)
	}
	if _, err := model.ParseMode(settings.Mode); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigInvalid, "invalid APPENV_MODE", err)
	}
	return settings, nil
}
