package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/nsi/internal/debug"
	"github.com/standardbeagle/nsi/internal/store"
)

// Rebuild is invoked after the debounce period for a (source, date) pair
// whose fragment files changed.
type Rebuild func(source, date string)

// Watcher monitors the fragment drop directory and triggers debounced child
// index rebuilds. Crawlers write fragments in bursts; the debounce collapses
// a burst into one rebuild per (source, date).
type Watcher struct {
	fsw       *fsnotify.Watcher
	dir       string
	debounce  time.Duration
	onRebuild Rebuild

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher over dir. Start must be called before events flow.
func New(dir string, debounce time.Duration, onRebuild Rebuild) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		fsw:       fsw,
		dir:       dir,
		debounce:  debounce,
		onRebuild: onRebuild,
		ctx:       ctx,
		cancel:    cancel,
		timers:    make(map[string]*time.Timer),
	}, nil
}

// Start begins watching the fragment directory.
func (w *Watcher) Start() error {
	if err := w.fsw.Add(w.dir); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.loop()
	debug.LogWatch("watching %s (debounce %s)\n", w.dir, w.debounce)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit. Pending
// debounce timers are cancelled; their rebuilds do not fire.
func (w *Watcher) Stop() {
	w.cancel()
	w.fsw.Close()
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	for key, timer := range w.timers {
		timer.Stop()
		delete(w.timers, key)
	}
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.handle(filepath.Base(event.Name))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			debug.LogWatch("watch error: %v\n", err)
		}
	}
}

// handle schedules a debounced rebuild for the fragment's (source, date).
// Files that are not fragment drops are ignored.
func (w *Watcher) handle(name string) {
	source, date, _, ok := store.ParseFragmentName(name)
	if !ok {
		debug.LogWatch("ignoring non-fragment file %s\n", name)
		return
	}
	key := source + "\x00" + date

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, exists := w.timers[key]; exists {
		timer.Reset(w.debounce)
		return
	}
	w.timers[key] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, key)
		w.mu.Unlock()

		select {
		case <-w.ctx.Done():
			return
		default:
		}
		debug.LogWatch("rebuilding %s %s\n", source, date)
		w.onRebuild(source, date)
	})
}
