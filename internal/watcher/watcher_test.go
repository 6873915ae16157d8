package watcher_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/glboard/internal/pubsub"
	"github.com/zjrosen/glboard/internal/watcher"
)

func startWatcher(t *testing.T, path string) <-chan pubsub.Event[watcher.WatcherEvent] {
	t.Helper()

	w, err := watcher.New(watcher.Config{Path: path, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	events := w.Broker().Subscribe(ctx)

	require.NoError(t, w.Start())
	return events
}

func TestWatcher_DebouncesBurstOfWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n"), 0o600))

	events := startWatcher(t, path)

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("ui:\n  show_counts: %t\n", i%2 == 0)), 0o600))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case event := <-events:
		require.Equal(t, "config.yaml", filepath.Base(event.Payload.Path))
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}

	select {
	case <-events:
		t.Fatal("burst should collapse into one notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	other := filepath.Join(dir, "journal.db")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n"), 0o600))
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))

	events := startWatcher(t, path)

	require.NoError(t, os.WriteFile(other, []byte("y"), 0o600))

	select {
	case <-events:
		t.Fatal("writes to other files must not notify")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	w, err := watcher.New(watcher.DefaultConfig(path))
	require.NoError(t, err)
	require.NoError(t, w.Start())

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestWatcher_RequiresPath(t *testing.T) {
	_, err := watcher.New(watcher.Config{})
	require.Error(t, err)
}
