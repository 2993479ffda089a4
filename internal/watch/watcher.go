// Package watch monitors package source directories and reports which
// package changed, so the watch command can rebuild it in develop mode.
package watch

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papapumpkin/shipyard/internal/manifest"
)

// Change reports a modified package.
type Change struct {
	Package string // package name from the manifest
	File    string // path that triggered the change
}

// Watcher monitors the directories of the given packages using fsnotify.
type Watcher struct {
	Changes <-chan Change // Read-only external channel

	changes chan Change // Internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher

	// dirs maps watched directory to owning package name, longest dir
	// first so nested package dirs resolve to the innermost package.
	dirs []dirEntry
}

type dirEntry struct {
	dir string
	pkg string
}

// NewWatcher creates a watcher for the given packages' directories.
func NewWatcher(pkgs []manifest.Package) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dirs := make([]dirEntry, 0, len(pkgs))
	for _, p := range pkgs {
		dirs = append(dirs, dirEntry{dir: filepath.Clean(p.Dir), pkg: p.Name})
	}
	sort.Slice(dirs, func(i, j int) bool {
		return len(dirs[i].dir) > len(dirs[j].dir)
	})

	ch := make(chan Change, 16)
	return &Watcher{
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
		dirs:    dirs,
	}, nil
}

// Start begins watching every package directory.
func (w *Watcher) Start() error {
	for _, d := range w.dirs {
		if err := w.watcher.Add(d.dir); err != nil {
			return err
		}
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: track last event time per file.
	const debounce = 200 * time.Millisecond
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for file := range pending {
					w.emit(file)
				}
				return
			}
			if ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= debounce {
					w.emit(file)
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

// ignored filters editor droppings and build output.
func ignored(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
		return true
	}
	return false
}

// emit never blocks: the rebuild loop is best-effort, and a reader that has
// stopped consuming (shutdown in progress) must not wedge the event loop. A
// dropped change just means the next write triggers the rebuild.
func (w *Watcher) emit(file string) {
	pkg := w.packageFor(file)
	if pkg == "" {
		return
	}
	select {
	case w.changes <- Change{Package: pkg, File: file}:
	default:
	}
}

// packageFor resolves the owning package by directory prefix, innermost
// package first.
func (w *Watcher) packageFor(file string) string {
	clean := filepath.Clean(file)
	for _, d := range w.dirs {
		if clean == d.dir || strings.HasPrefix(clean, d.dir+string(filepath.Separator)) {
			return d.pkg
		}
	}
	return ""
}
