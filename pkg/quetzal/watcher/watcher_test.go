package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, files []string) (*Watcher, <-chan string) {
	t.Helper()
	changes := make(chan string, 10)
	w, err := New(files, func(path string) { changes <- path }, WithDebounce(30*time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil {
			t.Errorf("Run failed: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return w, changes
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "programa.qz")
	writeFile(t, path, "imprimir(1)")

	w, changes := startWatcher(t, []string{path})
	writeFile(t, path, "imprimir(2)")

	select {
	case got := <-changes:
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	if w.Changes() != 1 {
		t.Errorf("expected 1 change, got %d", w.Changes())
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "programa.qz")
	writeFile(t, path, "")

	_, changes := startWatcher(t, []string{path})
	for i := 0; i < 5; i++ {
		writeFile(t, path, "imprimir(1)")
	}

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case <-changes:
		t.Error("expected one change for a burst of writes")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "programa.qz")
	other := filepath.Join(dir, "otro.txt")
	writeFile(t, path, "")

	_, changes := startWatcher(t, []string{path})
	writeFile(t, other, "x")

	select {
	case got := <-changes:
		t.Errorf("unexpected change for %s", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNewRequiresFiles(t *testing.T) {
	if _, err := New(nil, func(string) {}); err == nil {
		t.Error("expected error for empty file list")
	}
}
