package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvFileMatcher(t *testing.T) {
	match := EnvFileMatcher()

	accepted := []string{
		"/proj/.env",
		"/proj/.env.local",
		"/proj/.env.production.local",
		"/proj/public/index.html",
	}
	for _, path := range accepted {
		assert.True(t, match(path), "expected %q to match", path)
	}

	rejected := []string{
		"/proj/env",
		"/proj/.envrc",
		"/proj/public/app.js",
		"/proj/README.md",
	}
	for _, path := range rejected {
		assert.False(t, match(path), "expected %q not to match", path)
	}
}

func TestWatch_RunsOnChangeAtStartup(t *testing.T) {
	dir := t.TempDir()

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Config{
			Dirs: []string{dir},
			OnChange: func() error {
				runs.Add(1)
				return nil
			},
		})
	}()

	// The initial run happens before any filesystem event.
	require.Eventually(t, func() bool { return runs.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatch_TriggersOnWrite(t *testing.T) {
	dir := t.TempDir()

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Config{
			Dirs:     []string{dir},
			Match:    EnvFileMatcher(),
			Debounce: 20 * time.Millisecond,
			OnChange: func() error {
				runs.Add(1)
				return nil
			},
		})
	}()

	// Wait for the initial run so the watcher is definitely up.
	require.Eventually(t, func() bool { return runs.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REACT_APP_X=1\n"), 0o644))

	require.Eventually(t, func() bool { return runs.Load() >= 2 },
		2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWatch_TriggersOnNestedWrite(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "static", "pages")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	page := filepath.Join(nested, "about.html")
	require.NoError(t, os.WriteFile(page, []byte("<p>v1</p>"), 0o644))

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Config{
			Dirs:     []string{dir},
			Match:    EnvFileMatcher(),
			Debounce: 20 * time.Millisecond,
			OnChange: func() error {
				runs.Add(1)
				return nil
			},
		})
	}()

	require.Eventually(t, func() bool { return runs.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)

	// A change two levels below the watched root must still trigger.
	require.NoError(t, os.WriteFile(page, []byte("<p>v2</p>"), 0o644))

	require.Eventually(t, func() bool { return runs.Load() >= 2 },
		2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWatch_PicksUpNewDirectory(t *testing.T) {
	dir := t.TempDir()

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Config{
			Dirs:     []string{dir},
			Match:    EnvFileMatcher(),
			Debounce: 20 * time.Millisecond,
			OnChange: func() error {
				runs.Add(1)
				return nil
			},
		})
	}()

	require.Eventually(t, func() bool { return runs.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)

	nested := filepath.Join(dir, "pages")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	// The directory creation itself runs the action once.
	require.Eventually(t, func() bool { return runs.Load() >= 2 },
		2*time.Second, 10*time.Millisecond)

	// Writes inside the new directory are then seen.
	require.NoError(t, os.WriteFile(filepath.Join(nested, "page.html"), []byte("<p></p>"), 0o644))

	require.Eventually(t, func() bool { return runs.Load() >= 3 },
		2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWatch_NoWatchableDirs(t *testing.T) {
	err := Watch(context.Background(), Config{
		Dirs:     []string{filepath.Join(t.TempDir(), "missing")},
		OnChange: func() error { return nil },
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
