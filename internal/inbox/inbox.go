// Package inbox watches a drop directory for movie import files. A JSON
// file landing there goes through the same validation as an uploaded one,
// but headlessly: confirmation gates are auto-approved and the store
// skips duplicates. Processed files are renamed so nothing runs twice.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/libresine/libresine-server/internal/importer"
	"github.com/libresine/libresine-server/internal/store"
)

// settleDelay is how long a file must stay unchanged before it is picked
// up. Drops are often slow copies; importing a half-written file would
// reject it for malformed JSON.
const settleDelay = 500 * time.Millisecond

// Watcher monitors the import inbox directory.
type Watcher struct {
	path     string
	importer *importer.Manager
	logger   *slog.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer // path -> settle timer

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates an inbox watcher over the given directory, creating it if
// needed.
func New(path string, mgr *importer.Manager, logger *slog.Logger) (*Watcher, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create inbox directory: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(path); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch inbox directory: %w", err)
	}

	return &Watcher{
		path:     path,
		importer: mgr,
		logger:   logger,
		watcher:  fsWatcher,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Start processes pre-existing files and then watches for new ones. It
// blocks until the context is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.sweep(ctx)

	w.wg.Add(1)
	go w.processEvents(ctx)

	select {
	case <-ctx.Done():
	case <-w.done:
	}
	return nil
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
	})
	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.pending = map[string]*time.Timer{}
	w.mu.Unlock()

	return err
}

// sweep imports files that were dropped while the server was down.
func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.path)
	if err != nil {
		w.logger.Warn("failed to read inbox directory", "path", w.path, "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isImportFile(entry.Name()) {
			continue
		}
		w.processFile(ctx, filepath.Join(w.path, entry.Name()))
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isImportFile(filepath.Base(event.Name)) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("inbox watcher error", "error", err)
		}
	}
}

// schedule (re)arms the settle timer for a path. Every write pushes the
// import back by settleDelay, so a file is only picked up once it stops
// changing.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(settleDelay)
		return
	}

	w.pending[path] = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		default:
		}

		w.processFile(ctx, path)
	})
}

// processFile validates and imports one dropped file. Valid files commit
// through the normal session flow with gates auto-approved; invalid ones
// are renamed *.rejected with the reasons logged.
func (w *Watcher) processFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("failed to read inbox file", "file", path, "error", err)
		}
		return
	}

	filename := filepath.Base(path)
	session, err := w.importer.Start(ctx, filename, "", data)
	if err != nil {
		w.logger.Error("inbox import failed", "file", filename, "error", err)
		return
	}

	if session.State == importer.StateInvalid {
		w.logger.Warn("rejected inbox file",
			"file", filename,
			"errors", strings.Join(session.Errors, "; "),
		)
		w.rename(path, ".rejected")
		return
	}

	// Headless mode: approve whatever gates the session raises.
	sessionID := session.ID
	if session.State == importer.StateAwaitingLargeConfirm {
		session, err = w.importer.ConfirmLarge(ctx, sessionID)
	}
	if err == nil && session.State == importer.StateAwaitingDuplicateConfirm {
		session, err = w.importer.ConfirmDuplicates(ctx, sessionID)
	}

	switch {
	case errors.Is(err, store.ErrEmptyImport):
		w.logger.Info("inbox file contained no new movies", "file", filename)
		w.importer.Abort(sessionID)
	case err != nil:
		w.logger.Error("inbox import failed", "file", filename, "error", err)
		return
	default:
		w.logger.Info("imported inbox file", "file", filename, "imported", session.Imported)
	}

	w.rename(path, ".imported")
}

func (w *Watcher) rename(path, suffix string) {
	if err := os.Rename(path, path+suffix); err != nil {
		w.logger.Warn("failed to rename inbox file", "file", path, "error", err)
	}
}

// isImportFile matches plain *.json drops, leaving processed files alone.
func isImportFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".json") && !strings.HasPrefix(name, ".")
}
