// Package inbox watches a directory and processes every syllabus dropped into it.
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driving"
	"github.com/custodia-labs/syllabusmatch/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is processed.
// Editors and copy tools usually emit several writes per save.
const DefaultDebounce = 300 * time.Millisecond

// DefaultExtensions are the file types picked up from the inbox.
var DefaultExtensions = []string{".txt", ".md"}

// Result is reported once per processed file.
type Result struct {
	Path   string
	Result *domain.ProcessResult
	Err    error
}

// Watcher feeds new and changed inbox files to the matching service.
type Watcher struct {
	matching   driving.MatchingService
	ownerID    string
	debounce   time.Duration
	extensions map[string]bool
}

// NewWatcher creates a watcher that attributes uploads to ownerID.
func NewWatcher(matching driving.MatchingService, ownerID string) *Watcher {
	w := &Watcher{
		matching:   matching,
		ownerID:    ownerID,
		debounce:   DefaultDebounce,
		extensions: make(map[string]bool),
	}
	for _, ext := range DefaultExtensions {
		w.extensions[ext] = true
	}
	return w
}

// WithDebounce overrides DefaultDebounce.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch blocks until ctx is cancelled, sending one Result per processed file.
// The results channel is not closed by Watch.
func (w *Watcher) Watch(ctx context.Context, dir string, results chan<- Result) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("inbox: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: inbox %s is not a directory", domain.ErrInvalidInput, dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Info("watching inbox %s", dir)

	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
		wg     sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			if t.Stop() {
				wg.Done()
			}
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			path := w.handleFsEvent(event)
			if path == "" {
				continue
			}

			mu.Lock()
			if t, exists := timers[path]; exists && t.Stop() {
				wg.Done()
			}
			wg.Add(1)
			var timer *time.Timer
			timer = time.AfterFunc(w.debounce, func() {
				defer wg.Done()
				mu.Lock()
				if timers[path] == timer {
					delete(timers, path)
				}
				mu.Unlock()

				res := w.processFile(ctx, path)
				select {
				case results <- res:
				case <-ctx.Done():
				}
			})
			timers[path] = timer
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("inbox watcher error: %v", err)
		}
	}
}

// handleFsEvent returns the path to process for event, or "" to ignore it.
func (w *Watcher) handleFsEvent(event fsnotify.Event) string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return ""
	}
	if isHidden(event.Name) {
		return ""
	}
	if !w.extensions[strings.ToLower(filepath.Ext(event.Name))] {
		return ""
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return ""
	}
	return event.Name
}

func (w *Watcher) processFile(ctx context.Context, path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("reading %s: %w", path, err)}
	}

	logger.Debug("inbox: processing %s", path)
	res, err := w.matching.Process(ctx, string(data), w.ownerID)
	return Result{Path: path, Result: res, Err: err}
}

// isHidden reports whether the file name starts with a dot.
func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
