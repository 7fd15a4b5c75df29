package config

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

func TestWatcher_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "entities.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(watched, []byte("version: \"1.0\"\n"), 0644))

	w, err := NewWatcher(50*time.Millisecond, watched)
	require.NoError(t, err)

	changed := make(chan string, 10)
	var calls atomic.Int32
	w.OnChange(func(path string) error {
		calls.Add(1)
		changed <- path
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// A burst of writes, plus noise in an unwatched file
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(watched, []byte("version: \"1.1\"\n"), 0644))
	}
	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0644))

	select {
	case path := <-changed:
		want, _ := filepath.Abs(watched)
		assert.Equal(t, want, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_CallbackRoundsDoNotOverlap(t *testing.T) {
	watched := filepath.Join(t.TempDir(), "entities.yaml")
	w, err := NewWatcher(10*time.Millisecond, watched)
	require.NoError(t, err)
	defer w.Stop()

	var running, overlaps, calls atomic.Int32
	w.OnChange(func(string) error {
		if running.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(100 * time.Millisecond)
		running.Add(-1)
		calls.Add(1)
		return nil
	})

	// The second burst lands while the first round is still running
	w.schedule(watched)
	time.Sleep(50 * time.Millisecond)
	w.schedule(watched)

	require.Eventually(t, func() bool { return calls.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(0), overlaps.Load())
}

func TestNewWatcher_Errors(t *testing.T) {
	_, err := NewWatcher(0)
	require.Error(t, err)

	_, err = NewWatcher(0, filepath.Join(t.TempDir(), "missing-dir", "entities.yaml"))
	require.Error(t, err)
}
