package profiles

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/postop/internal/logger"
)

var watchLog = logger.For("profiles")

// DefaultDebounce is how long a file must be quiet before it is reloaded.
const DefaultDebounce = 250 * time.Millisecond

// ChangeFunc is called with each profile that was created or modified.
// Errors are logged; the watcher keeps running.
type ChangeFunc func(ctx context.Context, entry Entry) error

// Watcher reloads profile files in a directory when they change.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange ChangeFunc

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for dir. A debounce of zero uses DefaultDebounce.
func NewWatcher(dir string, debounce time.Duration, onChange ChangeFunc) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		timers:   make(map[string]*time.Timer),
	}
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	watchLog.Info("watching %s", w.dir)

	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, changed := handleFsEvent(event); changed {
				w.schedule(ctx, path)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				watchLog.Warn("event queue overflowed; some changes may be missed")
				continue
			}
			watchLog.Error("watcher error: %v", err)
		}
	}
}

// handleFsEvent decides whether an event should trigger a reload.
// Removals and renames are ignored: a patient's documents stay until
// another profile replaces them.
func handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if !IsProfileFile(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return filepath.Clean(event.Name), true
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.timers[path] == timer {
			delete(w.timers, path)
		}
		w.mu.Unlock()
		w.reload(ctx, path)
	})
	w.timers[path] = timer
}

func (w *Watcher) reload(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	entry, err := LoadFile(path)
	if err != nil {
		watchLog.Warn("skipping %s: %v", filepath.Base(path), err)
		return
	}
	if w.onChange == nil {
		return
	}
	if err := w.onChange(ctx, entry); err != nil {
		watchLog.Error("patient %s: %v", entry.PatientID, err)
	}
}

// stop cancels pending reloads and waits for running ones.
func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
