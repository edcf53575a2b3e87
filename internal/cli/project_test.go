// Package cli — project_test.go contains unit tests for the shared
// project-loading sequence. These tests exercise flag/settings/config
// interplay without requiring a Docker daemon.
package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/appenv/internal/model"
)

// withProjectDir points the global --chdir flag at dir for the duration
// of the test.
func withProjectDir(t *testing.T, dir string) {
	t.Helper()
	prev := chdir
	chdir = dir
	t.Cleanup(func() { chdir = prev })
}

func TestNewRootCommand_RegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}

	for _, want := range []string{"show", "inject", "check", "exec", "watch", "build"} {
		assert.Contains(t, names, want)
	}
}

func TestLoadProject_ResolvesEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("REACT_APP_NAME=demo\nIGNORED=1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "appenv.json"),
		[]byte(`{"publicUrl": "/demo"}`), 0o644))
	withProjectDir(t, dir)

	proj, err := loadProject("production")
	require.NoError(t, err)

	assert.Equal(t, model.ModeProduction, proj.mode)
	assert.Equal(t, model.DefaultPrefix, proj.config.Prefix)

	v, ok := proj.env.Lookup("REACT_APP_NAME")
	require.True(t, ok)
	assert.Equal(t, "demo", v)

	v, ok = proj.env.Lookup(model.VarPublicURL)
	require.True(t, ok)
	assert.Equal(t, "/demo", v)

	_, ok = proj.env.Lookup("IGNORED")
	assert.False(t, ok)

	assert.Equal(t, filepath.Join(dir, "public"), proj.publicDir())
	assert.Equal(t, filepath.Join(dir, "build"), proj.outputDir())
}

func TestLoadProject_ModeFromSettings(t *testing.T) {
	withProjectDir(t, t.TempDir())
	t.Setenv("APPENV_MODE", "test")

	proj, err := loadProject("")
	require.NoError(t, err)
	assert.Equal(t, model.ModeTest, proj.mode)
}

func TestLoadProject_FlagBeatsSettings(t *testing.T) {
	withProjectDir(t, t.TempDir())
	t.Setenv("APPENV_MODE", "test")

	proj, err := loadProject("development")
	require.NoError(t, err)
	assert.Equal(t, model.ModeDevelopment, proj.mode)
}

func TestLoadProject_InvalidMode(t *testing.T) {
	withProjectDir(t, t.TempDir())

	_, err := loadProject("staging")
	require.Error(t, err)

	cliErr, ok := err.(*model.CLIError)
	require.True(t, ok)
	assert.Equal(t, model.ExitConfigInvalid, cliErr.Code)
}

func TestResolveOutDir(t *testing.T) {
	dir := t.TempDir()
	withProjectDir(t, dir)

	proj, err := loadProject("development")
	require.NoError(t, err)

	t.Run("default from config", func(t *testing.T) {
		out, err := resolveOutDir(proj, "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "build"), out)
	})

	t.Run("relative flag resolves against the invocation directory", func(t *testing.T) {
		// With --chdir the project dir and the invocation dir differ; a
		// relative --out-dir must follow the invocation dir.
		out, err := resolveOutDir(proj, "dist")
		require.NoError(t, err)

		cwd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cwd, "dist"), out)
	})

	t.Run("absolute flag is kept", func(t *testing.T) {
		abs := filepath.Join(dir, "elsewhere")
		out, err := resolveOutDir(proj, abs)
		require.NoError(t, err)
		assert.Equal(t, abs, out)
	})
}

func TestLoadProject_MissingDirectory(t *testing.T) {
	withProjectDir(t, filepath.Join(t.TempDir(), "gone"))

	_, err := loadProject("development")
	require.Error(t, err)
}
