// Package watch is the optional filesystem-watch collaborator: it signals a
// caller that the corpus database file (or its SQLite WAL) has changed on
// disk, so a long-lived reader knows to re-fetch a graph snapshot instead of
// polling. It does not read or interpret the database itself; the owning
// process still goes through internal/store for every read.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a SQLite database file and its WAL/SHM siblings for
// changes and delivers a notification per batch of events.
type Watcher struct {
	watcher *fsnotify.Watcher
	notify  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New starts watching dbPath (and the -wal/-shm files SQLite writes
// alongside it in WAL mode) for changes. The returned Watcher must be
// stopped with Stop.
func New(dbPath string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(dbPath)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch: add directory %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher: fsw,
		notify:  make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}

	base := filepath.Base(dbPath)
	w.wg.Add(1)
	go w.loop(base)
	return w, nil
}

// Notify returns a channel that receives a value whenever the watched
// database file or one of its WAL/SHM siblings changes. It is buffered to
// one slot so bursts of writes coalesce into a single pending notification,
// the same coalescing behavior spec §5's chunked progress reporting relies
// on elsewhere.
func (w *Watcher) Notify() <-chan struct{} {
	return w.notify
}

// Stop releases the underlying fsnotify watcher and waits for the event
// loop to exit.
func (w *Watcher) Stop() {
	w.cancel()
	_ = w.watcher.Close()
	w.wg.Wait()
}

func (w *Watcher) loop(base string) {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !matchesDBFile(event.Name, base) {
				continue
			}
			select {
			case w.notify <- struct{}{}:
			default:
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

		case <-w.ctx.Done():
			return
		}
	}
}

// matchesDBFile reports whether name is the database file itself or one of
// the WAL/SHM/journal siblings SQLite writes next to it.
func matchesDBFile(name, base string) bool {
	b := filepath.Base(name)
	if b == base {
		return true
	}
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		if b == base+suffix {
			return true
		}
	}
	return false
}
