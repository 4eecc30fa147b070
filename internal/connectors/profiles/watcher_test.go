package profiles

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		setupFile bool
		setupDir  bool
		operation fsnotify.Op
		want      bool
	}{
		{name: "create profile", fileName: "p1.yaml", setupFile: true, operation: fsnotify.Create, want: true},
		{name: "write profile", fileName: "p1.json", setupFile: true, operation: fsnotify.Write, want: true},
		{name: "remove is ignored", fileName: "p1.yaml", operation: fsnotify.Remove},
		{name: "rename is ignored", fileName: "p1.yaml", operation: fsnotify.Rename},
		{name: "chmod is ignored", fileName: "p1.yaml", setupFile: true, operation: fsnotify.Chmod},
		{name: "non-profile file", fileName: "notes.txt", setupFile: true, operation: fsnotify.Write},
		{name: "hidden file", fileName: ".p1.yaml", setupFile: true, operation: fsnotify.Create},
		{name: "directory", fileName: "dir.yaml", setupDir: true, operation: fsnotify.Create},
		{name: "vanished before stat", fileName: "gone.yaml", operation: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.fileName)
			switch {
			case tt.setupFile:
				require.NoError(t, os.WriteFile(path, []byte("name: x\n"), 0600))
			case tt.setupDir:
				require.NoError(t, os.Mkdir(path, 0700))
			}

			got, ok := handleFsEvent(fsnotify.Event{Name: path, Op: tt.operation})

			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, path, got)
			}
		})
	}
}

func TestWatcher_ReloadsChangedProfile(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var seen []Entry
	w := NewWatcher(dir, 20*time.Millisecond, func(_ context.Context, e Entry) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	path := filepath.Join(dir, "p7.yaml")
	// Rewrite until the watcher has registered the directory and reported.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("name: Grace Hopper\nprocedure: hip replacement\n"), 0600)
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "p7", seen[0].PatientID)
	assert.Equal(t, "Grace Hopper", seen[0].Profile.Name)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	w := NewWatcher(t.TempDir(), time.Hour, nil)
	ctx := context.Background()

	w.schedule(ctx, "/x/p1.yaml")
	w.schedule(ctx, "/x/p1.yaml")
	w.schedule(ctx, "/x/p2.yaml")

	w.mu.Lock()
	assert.Len(t, w.timers, 2)
	w.mu.Unlock()

	// stop cancels pending reloads without waiting for the debounce.
	w.stop()
	assert.Empty(t, w.timers)
}

func TestWatcher_RunErrors(t *testing.T) {
	dir := t.TempDir()

	err := NewWatcher(filepath.Join(dir, "missing"), 0, nil).Run(context.Background())
	assert.Error(t, err)

	file := filepath.Join(dir, "p1.yaml")
	require.NoError(t, os.WriteFile(file, []byte("name: x\n"), 0600))
	err = NewWatcher(file, 0, nil).Run(context.Background())
	assert.Error(t, err)
}
