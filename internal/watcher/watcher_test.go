package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestDebouncerBatchesAndDeduplicates(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(ChangeEvent{Path: "b.html.tmpl", Type: EventTypeCreated})
	d.Add(ChangeEvent{Path: "a.html.tmpl", Type: EventTypeModified})
	d.Add(ChangeEvent{Path: "b.html.tmpl", Type: EventTypeModified})

	select {
	case events := <-d.Output():
		require.Len(t, events, 2)
		assert.Equal(t, "a.html.tmpl", events[0].Path)
		assert.Equal(t, "b.html.tmpl", events[1].Path)
		assert.Equal(t, EventTypeModified, events[1].Type)
	case <-time.After(time.Second):
		t.Fatal("no batch released")
	}

	select {
	case events := <-d.Output():
		t.Fatalf("unexpected second batch: %v", events)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncerRetriesWhenOutputIsFull(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	for range cap(d.output) {
		d.output <- []ChangeEvent{{Path: "queued"}}
	}
	d.Add(ChangeEvent{Path: "a.html.tmpl", Type: EventTypeModified})

	// Let the first flush find the channel full.
	time.Sleep(40 * time.Millisecond)
	for range cap(d.output) {
		<-d.Output()
	}

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, "a.html.tmpl", events[0].Path)
	case <-time.After(time.Second):
		t.Fatal("held batch was never released")
	}
}

func TestDebouncerStopDropsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	d.Add(ChangeEvent{Path: "a"})
	d.Stop()

	select {
	case events := <-d.Output():
		t.Fatalf("unexpected batch after stop: %v", events)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestPatternFilter(t *testing.T) {
	filter := PatternFilter("*.html.tmpl", "*.yaml")
	assert.True(t, filter("views/pages/home.html.tmpl"))
	assert.True(t, filter("models/home.yaml"))
	assert.False(t, filter("views/home.html"))
	assert.False(t, filter("views/home.html.tmpl~"))
}

func TestNoHiddenFilter(t *testing.T) {
	assert.True(t, NoHiddenFilter("views/home.html.tmpl"))
	assert.True(t, NoHiddenFilter("../views/home.html.tmpl"))
	assert.True(t, NoHiddenFilter("./views/home.html.tmpl"))
	assert.False(t, NoHiddenFilter("views/.home.html.tmpl.swp"))
	assert.False(t, NoHiddenFilter(".git/HEAD"))
}

func TestAddPathRejectsFilesAndMissingPaths(t *testing.T) {
	fw, err := New(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.html.tmpl")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o644))

	assert.NoError(t, fw.AddPath(dir))
	assert.Error(t, fw.AddPath(file))
	assert.Error(t, fw.AddPath(filepath.Join(dir, "missing")))
	assert.Error(t, fw.AddPath(" "))
}

func TestAddRecursiveSkipsHiddenDirectories(t *testing.T) {
	fw, err := New(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pages", "docs"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))

	require.NoError(t, fw.AddRecursive(root))
	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "pages"),
		filepath.Join(root, "pages", "docs"),
	}, fw.WatchList())
}

func TestFileWatcherDeliversFilteredChanges(t *testing.T) {
	fw, err := New(30*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	root := t.TempDir()
	require.NoError(t, fw.AddRecursive(root))
	fw.AddFilter(PatternFilter("*.html.tmpl"))

	var (
		mu   sync.Mutex
		seen []string
	)
	fw.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			seen = append(seen, filepath.Base(e.Path))
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "home.html.tmpl"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, seen, "notes.txt")
	assert.Contains(t, seen, "home.html.tmpl")
}
