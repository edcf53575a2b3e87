// Package watcher re-runs an action whenever watched project files change.
//
// It backs the "appenv watch" command: env files and public HTML are
// watched via fsnotify, and changes trigger re-injection after a short
// debounce window so editors that write multiple events per save (write
// then chmod, or rename-into-place) cause one run instead of several.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before the
// action runs.
const DefaultDebounce = 250 * time.Millisecond

// Config describes what to watch and what to do on change.
type Config struct {
	// Dirs are directories to watch, each recursively. Watching
	// directories (not files) means newly created env files are picked
	// up too.
	Dirs []string

	// Match decides whether an event path is relevant. Nil means every
	// event is relevant.
	Match func(path string) bool

	// OnChange runs after the debounce window closes. It also runs once
	// at startup before any event arrives.
	OnChange func() error

	// OnError receives errors from OnChange and from the underlying
	// watcher without stopping the loop. Nil means errors are dropped.
	OnError func(error)

	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration
}

// Watch runs the watch loop until ctx is cancelled. It returns the ctx
// error on cancellation, or a setup error if the watcher could not be
// created or no watchable directory exists.
func Watch(ctx context.Context, cfg Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	watched := 0
	for _, dir := range cfg.Dirs {
		if _, statErr := os.Stat(dir); statErr != nil {
			continue
		}
		added, addErr := addTree(w, dir)
		if addErr != nil {
			return addErr
		}
		watched += added
	}
	if watched == 0 {
		return os.ErrNotExist
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	report := cfg.OnError
	if report == nil {
		report = func(error) {}
	}

	// Initial run so the output is current before the first change.
	if err := cfg.OnChange(); err != nil {
		report(err)
	}

	// The timer starts stopped; relevant events re-arm it. Firing only
	// after the channel has been quiet for the debounce window coalesces
	// editor save bursts.
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			if event.Op.Has(fsnotify.Create) && isDir(event.Name) {
				// A new subdirectory needs its own watch. Files may have
				// landed in it before the watch is in place, so run once.
				if _, addErr := addTree(w, event.Name); addErr != nil {
					report(addErr)
				}
				timer.Reset(debounce)
				continue
			}
			if cfg.Match != nil && !cfg.Match(event.Name) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			report(err)

		case <-timer.C:
			if err := cfg.OnChange(); err != nil {
				report(err)
			}
		}
	}
}

// addTree watches dir and every directory below it. fsnotify watches are
// not recursive, and HTML under the public directory can be nested, so
// each subdirectory gets its own watch. Returns the number of watches
// added.
func addTree(w *fsnotify.Watcher, dir string) (int, error) {
	added := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			return nil
		}
		if addErr := w.Add(path); addErr != nil {
			return addErr
		}
		added++
		return nil
	})
	return added, err
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// relevant filters out chmod-only events, which editors and git emit
// constantly without changing content.
func relevant(event fsnotify.Event) bool {
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename)
}

// EnvFileMatcher returns a Match function that accepts dotenv files and
// HTML files — the inputs that affect injection output.
func EnvFileMatcher() func(string) bool {
	return func(path string) bool {
		base := filepath.Base(path)
		if base == ".env" || strings.HasPrefix(base, ".env.") {
			return true
		}
		return filepath.Ext(base) == ".html"
	}
}
