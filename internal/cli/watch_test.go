package cli

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

func TestCatalogWatcherWants(t *testing.T) {
	dir := t.TempDir()
	single := writeFile(t, dir, "single.ts", viewerTS)
	sub := filepath.Join(dir, "translations")
	require.NoError(t, os.Mkdir(sub, 0o755))

	w, err := newCatalogWatcher([]string{single, sub})
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.wants(single))
	assert.True(t, w.wants(filepath.Join(sub, "nomacs_de.ts")))
	assert.True(t, w.wants(filepath.Join(sub, "NOMACS_FR.TS")))
	assert.False(t, w.wants(filepath.Join(sub, "notes.txt")))
	assert.False(t, w.wants(filepath.Join(dir, "other.ts")))
	assert.False(t, w.wants(filepath.Join(sub, "nested", "x.ts")))

	_, err = newCatalogWatcher([]string{filepath.Join(dir, "missing.ts")})
	assert.Error(t, err)
}

func TestCatalogWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nomacs_sr.ts", viewerTS)
	w, err := newCatalogWatcher([]string{dir})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan string, 8)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(p string) { changed <- p }) }()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(viewerTS), 0o644))
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))

	select {
	case got := <-changed:
		abs, _ := filepath.Abs(path)
		gotAbs, _ := filepath.Abs(got)
		assert.Equal(t, abs, gotAbs)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case extra := <-changed:
		t.Fatalf("burst reported twice: %s", extra)
	case <-time.After(2 * watchDebounce):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestCatalogWatcherCoversSubdirectories(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "translations", "extra")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeFile(t, nested, "nomacs_sr.ts", viewerTS)

	initial, err := expandCatalogs([]string{dir})
	require.NoError(t, err)
	require.Len(t, initial, 1)

	w, err := newCatalogWatcher([]string{dir})
	require.NoError(t, err)
	defer w.Close()
	assert.True(t, w.wants(initial[0]))
	assert.True(t, w.wants(filepath.Join(dir, "translations", "nomacs_de.ts")))
}

func TestCatalogWatcherSerialisesCallbacks(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a_sr.ts", viewerTS)
	second := writeFile(t, dir, "b_sr.ts", viewerTS)
	w, err := newCatalogWatcher([]string{dir})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var running, overlaps int32
	changed := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(p string) {
			if atomic.AddInt32(&running, 1) > 1 {
				atomic.AddInt32(&overlaps, 1)
			}
			time.Sleep(100 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			changed <- p
		})
	}()

	require.NoError(t, os.WriteFile(first, []byte(viewerTS), 0o644))
	require.NoError(t, os.WriteFile(second, []byte(viewerTS), 0o644))
	for i := 0; i < 2; i++ {
		select {
		case <-changed:
		case <-time.After(5 * time.Second):
			t.Fatal("change not reported")
		}
	}
	assert.Zero(t, atomic.LoadInt32(&overlaps))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
