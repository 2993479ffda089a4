package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/papapumpkin/shipyard/internal/manifest"
)

func TestPackageFor(t *testing.T) {
	t.Parallel()

	w, err := NewWatcher([]manifest.Package{
		{Name: "backend", Dir: "/src/master"},
		{Name: "web", Dir: "/src/www/base"},
		{Name: "web-grid", Dir: "/src/www/base/grid"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.watcher.Close()

	tests := []struct {
		file string
		want string
	}{
		{"/src/master/main.py", "backend"},
		{"/src/www/base/index.js", "web"},
		// Innermost package wins for nested directories.
		{"/src/www/base/grid/cell.js", "web-grid"},
		{"/src/elsewhere/file.txt", ""},
		// Prefix match must be on path segments, not raw strings.
		{"/src/masterful/main.py", ""},
	}
	for _, tt := range tests {
		if got := w.packageFor(tt.file); got != tt.want {
			t.Errorf("packageFor(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"/src/master/main.py", false},
		{"/src/master/.main.py.swx", true},
		{"/src/master/main.py~", true},
		{"/src/master/.main.py.swp", true},
		{"/src/master/notes.txt", false},
	}
	for _, tt := range tests {
		if got := ignored(tt.name); got != tt.want {
			t.Errorf("ignored(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWatcherEmitsChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewWatcher([]manifest.Package{{Name: "backend", Dir: dir}})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	file := filepath.Join(dir, "main.py")
	if err := os.WriteFile(file, []byte("print()\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case change := <-w.Changes:
		if change.Package != "backend" {
			t.Errorf("change.Package = %q, want backend", change.Package)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported within the debounce window")
	}
}

// Stop must return even when the consumer is gone and more changes are
// pending than the channel can buffer; surplus changes are dropped, never
// allowed to wedge the event loop.
func TestStopWithoutConsumer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewWatcher([]manifest.Package{{Name: "backend", Dir: dir}})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 40; i++ {
		name := filepath.Join(dir, fmt.Sprintf("module_%02d.py", i))
		if err := os.WriteFile(name, []byte("pass\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// Let the debounce window elapse so the pending set is flushed.
	time.Sleep(500 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return with an abandoned consumer")
	}
}

// Editor swap files must not trigger rebuilds.
func TestWatcherIgnoresSwapFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewWatcher([]manifest.Package{{Name: "backend", Dir: dir}})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, ".main.py.swp"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case change := <-w.Changes:
		t.Errorf("unexpected change for %q", change.File)
	case <-time.After(500 * time.Millisecond):
	}
}
