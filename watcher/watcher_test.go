package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitForFlag(t *testing.T, w *Watcher) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if w.Consume() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("change flag never set")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcherSetsFlagOnWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer w.Close()

	require.False(t, w.Consume())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.frag"), []byte("x"), 0o644))
	waitForFlag(t, w)

	// edge triggered: reading clears it
	require.False(t, w.Consume())
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.frag"), []byte{byte(i)}, 0o644))
	}
	waitForFlag(t, w)

	// however many events arrived, consuming settles to false once the
	// burst has been delivered
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		w.Consume()
		time.Sleep(20 * time.Millisecond)
	}
	require.False(t, w.Consume())
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer w.Close()

	sub := filepath.Join(dir, "shaders")
	require.NoError(t, os.Mkdir(sub, 0o755))
	waitForFlag(t, w)

	// give the watcher a moment to register the new directory
	time.Sleep(100 * time.Millisecond)
	w.Consume()

	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.frag"), []byte("y"), 0o644))
	waitForFlag(t, w)
}
