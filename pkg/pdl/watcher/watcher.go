// Package watcher relints PDL source files as they change on disk. It is
// an authoring convenience for operators editing policies locally before
// uploading them: it never writes store state and has no runtime effect.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"truthcore-hq/atlas/pkg/pdl/parser"
)

// LintResult is the outcome of re-linting one changed file.
type LintResult struct {
	Path   string
	Errors []string
}

// Clean reports whether the file linted without errors.
func (r LintResult) Clean() bool {
	return len(r.Errors) == 0
}

// Watcher watches a directory of PDL files and re-lints on change.
type Watcher struct {
	dir     string
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	// onResult, when set, receives every lint result. Primarily for tests.
	onResult func(LintResult)
}

// New creates a watcher over dir.
func New(dir string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		dir:     dir,
		logger:  logger.With("component", "pdl.watcher", "dir", dir),
		watcher: fw,
	}, nil
}

// OnResult registers a callback invoked with every lint result.
func (w *Watcher) OnResult(fn func(LintResult)) {
	w.onResult = fn
}

// Run processes file events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	w.logger.Info("watching PDL sources")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isPDLFile(event.Name) {
				continue
			}
			w.lint(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) lint(path string) {
	result := LintResult{Path: path}
	if list := parser.LintFile(path); list.HasErrors() {
		result.Errors = list.Messages()
	}

	if result.Clean() {
		w.logger.Info("lint clean", "file", filepath.Base(path))
	} else {
		w.logger.Warn("lint failed",
			"file", filepath.Base(path),
			"errors", len(result.Errors),
		)
		for _, msg := range result.Errors {
			w.logger.Warn("lint error", "file", filepath.Base(path), "detail", msg)
		}
	}
	if w.onResult != nil {
		w.onResult(result)
	}
}

func isPDLFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".pdl.yaml") || strings.HasSuffix(lower, ".pdl.yml")
}
