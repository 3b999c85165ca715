package filestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const eventBufferSize = 100

// InboxEvent reports a settled file in a watched inbox directory.
type InboxEvent struct {
	Path      string
	Timestamp time.Time
}

// InboxWatcher watches a directory and emits one event per file once writes
// to it have been quiet for the debounce delay.
type InboxWatcher struct {
	dir      string
	delay    time.Duration
	accept   func(name string) bool
	watcher  *fsnotify.Watcher
	events   chan InboxEvent
	log      zerolog.Logger
	mu       sync.Mutex
	debounce map[string]*time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewInboxWatcher starts watching dir. accept filters file base names; nil
// accepts every record file. The directory is created if it doesn't exist.
func NewInboxWatcher(dir string, delay time.Duration, accept func(name string) bool, log zerolog.Logger) (*InboxWatcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	if accept == nil {
		accept = func(string) bool { return true }
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &InboxWatcher{
		dir:      dir,
		delay:    delay,
		accept:   accept,
		watcher:  watcher,
		events:   make(chan InboxEvent, eventBufferSize),
		log:      log,
		debounce: make(map[string]*time.Timer),
		ctx:      ctx,
		cancel:   cancel,
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Events returns the channel of settled files. It is closed by Close.
func (w *InboxWatcher) Events() <-chan InboxEvent {
	return w.events
}

// Close stops watching and closes the event channel.
func (w *InboxWatcher) Close() error {
	w.cancel()

	w.mu.Lock()
	for _, timer := range w.debounce {
		timer.Stop()
	}
	w.debounce = make(map[string]*time.Timer)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	close(w.events)
	w.mu.Unlock()

	return err
}

func (w *InboxWatcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("dir", w.dir).Msg("inbox watcher error")
		}
	}
}

func (w *InboxWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	name := filepath.Base(event.Name)
	if !IsRecordFile(name) || !w.accept(name) {
		return
	}

	path := event.Name

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx.Err() != nil {
		return
	}
	if timer, exists := w.debounce[path]; exists {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(w.delay, func() {
		w.notify(path)
	})
}

func (w *InboxWatcher) notify(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.debounce, path)
	if w.ctx.Err() != nil {
		return
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	select {
	case w.events <- InboxEvent{Path: path, Timestamp: time.Now()}:
	default:
		w.log.Warn().Str("path", path).Msg("inbox event dropped, buffer full")
	}
}
