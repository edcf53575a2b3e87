package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/appenv/internal/model"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_MissingConfigUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, model.DefaultPrefix, cfg.Prefix)
	assert.Equal(t, DefaultPublicDir, cfg.PublicDir)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultWorkdir, cfg.Build.Workdir)
	assert.Empty(t, cfg.PublicURL)
}

func TestLoad_JSONCWithComments(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "appenv.json", `{
  // client variables must carry this prefix
  "prefix": "MYAPP_",
  "publicDir": "static",
  "publicUrl": "/app",
  "build": {
    "image": "node:22",
    "command": ["npm", "run", "build"],
  },
}`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "MYAPP_", cfg.Prefix)
	assert.Equal(t, "static", cfg.PublicDir)
	assert.Equal(t, "/app", cfg.PublicURL)
	assert.Equal(t, "node:22", cfg.Build.Image)
	assert.Equal(t, []string{"npm", "run", "build"}, cfg.Build.Command)
	// Unset fields still get defaults.
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultWorkdir, cfg.Build.Workdir)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "appenv.yaml", `
prefix: VITE_
outputDir: dist
build:
  image: node:22
  command: [npm, run, build]
  workdir: /src
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "VITE_", cfg.Prefix)
	assert.Equal(t, "dist", cfg.OutputDir)
	assert.Equal(t, "/src", cfg.Build.Workdir)
}

func TestLoad_JSONWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "appenv.json", `{"prefix": "FROM_JSON_"}`)
	writeConfig(t, dir, "appenv.yaml", `prefix: FROM_YAML_`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "FROM_JSON_", cfg.Prefix)
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "appenv.json", `{"prefix": `)

	_, err := Load(dir)
	require.Error(t, err)

	cliErr, ok := err.(*model.CLIError)
	require.True(t, ok)
	assert.Equal(t, model.ExitConfigInvalid, cliErr.Code)
}

func TestLoad_BuildCommandRequiresImage(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "appenv.yaml", `
build:
  command: [npm, run, build]
`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build.image")
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("APPENV_VERBOSE", "true")
	t.Setenv("APPENV_MODE", "production")
	t.Setenv("APPENV_DOCKER_HOST", "unix:///run/user/1000/docker.sock")

	settings, err := LoadSettings()
	require.NoError(t, err)

	assert.True(t, settings.Verbose)
	assert.Equal(t, "production", settings.Mode)
	assert.Equal(t, "unix:///run/user/1000/docker.sock", settings.DockerHost)
}

func TestLoadSettings_InvalidMode(t *testing.T) {
	t.Setenv("APPENV_MODE", "staging")

	_, err := LoadSettings()
	require.Error(t, err)
}
