package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSourceWatcher_ReportsMatchingChanges(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/main.c")

	sw, err := newSourceWatcher(root, []string{"src/**/*.c"}, []string{"src/gen/**"}, nil)
	if err != nil {
		t.Fatalf("newSourceWatcher: %v", err)
	}
	sw.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	calls := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- sw.Run(ctx, func(changed []string) { calls <- changed })
	}()

	if err := os.WriteFile(filepath.Join(root, "src", "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "src", "main.c"), []byte("int main;"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case changed := <-calls:
		if len(changed) != 1 || filepath.Base(changed[0]) != "main.c" {
			t.Errorf("changed = %v, want [.../src/main.c]", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSourceWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()

	sw, err := newSourceWatcher(root, []string{"**/*.c"}, nil, nil)
	if err != nil {
		t.Fatalf("newSourceWatcher: %v", err)
	}
	sw.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	calls := make(chan []string, 4)
	go func() { _ = sw.Run(ctx, func(changed []string) { calls <- changed }) }()

	dir := filepath.Join(root, "drivers")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher time to pick up the new directory.
	deadline := time.After(5 * time.Second)
	for i := 0; ; i++ {
		if err := os.WriteFile(filepath.Join(dir, "gpio.c"), []byte{byte(i)}, 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case changed := <-calls:
			if filepath.Base(changed[len(changed)-1]) != "gpio.c" {
				t.Errorf("changed = %v, want gpio.c", changed)
			}
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("change in new directory not reported")
		}
	}
}

func TestSourceWatcher_MissingRoot(t *testing.T) {
	if _, err := newSourceWatcher(filepath.Join(t.TempDir(), "absent"), []string{"**/*.c"}, nil, nil); err == nil {
		t.Error("expected error for missing root")
	}
}
