package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(line)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestWatcher_RunsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	other := filepath.Join(dir, "other.log")
	require.NoError(t, os.WriteFile(path, []byte("2024-01-01 entry 1\n"), 0o644))
	require.NoError(t, os.WriteFile(other, nil, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- New(path, 20*time.Millisecond, zerolog.Nop()).Run(ctx, func(context.Context) {
			calls.Add(1)
		})
	}()

	// Writes may land before the watcher is registered, so keep appending
	// until one is seen.
	require.Eventually(t, func() bool {
		appendLine(t, path, "2024-01-01 entry 2\n")
		return calls.Load() > 0
	}, 5*time.Second, 100*time.Millisecond)

	// The last append above may still have a callback pending.
	var before int32
	require.Eventually(t, func() bool {
		before = calls.Load()
		time.Sleep(200 * time.Millisecond)
		return calls.Load() == before
	}, 5*time.Second, time.Millisecond)

	appendLine(t, other, "unrelated\n")
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, before, calls.Load(), "writes to other files are ignored")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "app.log")

	err := New(path, time.Millisecond, zerolog.Nop()).Run(context.Background(), func(context.Context) {})
	assert.Error(t, err)
}
