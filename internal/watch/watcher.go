package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDelay coalesces the burst of events an editor save produces.
const DefaultDebounceDelay = 150 * time.Millisecond

// FileWatcher reports writes to a single file. It watches the parent
// directory so saves that replace the file by rename are seen too.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	target  string
	changes chan struct{}
	errors  chan error
	done    chan struct{}

	mu            sync.Mutex
	debounceDelay time.Duration
	timer         *time.Timer
	closed        bool
}

// NewFileWatcher starts watching path.
func NewFileWatcher(path string, delay time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	fw := &FileWatcher{
		watcher:       w,
		target:        abs,
		changes:       make(chan struct{}, 1),
		errors:        make(chan error, 10),
		done:          make(chan struct{}),
		debounceDelay: delay,
	}
	go fw.processEvents()
	return fw, nil
}

// Changes delivers one value per debounced burst of writes. Pending
// changes coalesce into a single value.
func (fw *FileWatcher) Changes() <-chan struct{} {
	return fw.changes
}

// Errors delivers watcher errors. The channel drops errors when full.
func (fw *FileWatcher) Errors() <-chan error {
	return fw.errors
}

// Close stops watching.
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return nil
	}
	fw.closed = true
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()
	close(fw.done)
	return fw.watcher.Close()
}

func (fw *FileWatcher) processEvents() {
	for {
		select {
		case <-fw.done:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			select {
			case fw.errors <- err:
			default:
			}
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != fw.target {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.closed {
		return
	}
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounceDelay, fw.emit)
}

func (fw *FileWatcher) emit() {
	select {
	case fw.changes <- struct{}{}:
	default:
	}
}
