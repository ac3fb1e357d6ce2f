package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type collector struct {
	mu    sync.Mutex
	paths []string
}

func (c *collector) add(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func (c *collector) waitFor(t *testing.T, n int, timeout time.Duration) []string {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if got := c.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d documents, got %v", n, c.snapshot())
	return nil
}

func TestInbox_assessesDroppedDocument(t *testing.T) {
	dir := t.TempDir()
	c := &collector{}
	in := New([]string{dir}, true, c.add)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := in.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer in.Stop()

	path := filepath.Join(dir, "card.png")
	if err := os.WriteFile(path, []byte("fake image"), 0644); err != nil {
		t.Fatal(err)
	}

	got := c.waitFor(t, 1, 3*time.Second)
	if got[0] != path {
		t.Errorf("document = %q, want %q", got[0], path)
	}
}

func TestInbox_ignoresUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	c := &collector{}
	in := New([]string{dir}, false, c.add)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := in.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer in.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	supported := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(supported, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got := c.waitFor(t, 1, 3*time.Second)
	for _, p := range got {
		if p != supported {
			t.Errorf("unexpected document %q", p)
		}
	}
}

func TestInbox_syncExisting(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.jpg")
	if err := os.WriteFile(existing, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	c := &collector{}
	in := New([]string{dir}, true, c.add)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := in.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer in.Stop()

	in.SyncExisting()
	got := c.waitFor(t, 1, time.Second)
	if got[0] != existing {
		t.Errorf("document = %q, want %q", got[0], existing)
	}
}

func TestInbox_createsMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "inbox")
	in := New([]string{root}, true, func(string) {})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := in.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer in.Stop()

	if _, err := os.Stat(root); err != nil {
		t.Errorf("root not created: %v", err)
	}
}
