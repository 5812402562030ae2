// Package watcher reports changes to scene files.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/achilleasa/hitmiss/log"
	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches files for changes and invokes a callback once the
// changes settle.
//
// The parent directory of each file is watched instead of the file itself so
// that editors replacing files via rename are still detected.
type FileWatcher struct {
	logger    log.Logger
	watcher   *fsnotify.Watcher
	mu        sync.Mutex
	callbacks map[string]func(string)
	dirs      map[string]bool
	debounce  time.Duration
	timers    map[string]*time.Timer
	started   bool
	done      chan struct{}
}

// Create a new file watcher. Callbacks fire once no further events for the
// same file have been observed for the debounce period.
func New(debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: failed to create watcher: %w", err)
	}

	return &FileWatcher{
		logger:    log.New("watcher"),
		watcher:   watcher,
		callbacks: make(map[string]func(string)),
		dirs:      make(map[string]bool),
		debounce:  debounce,
		timers:    make(map[string]*time.Timer),
		done:      make(chan struct{}),
	}, nil
}

// Watch the specified files. The callback receives the absolute path of the
// changed file.
func (fw *FileWatcher) Watch(files []string, callback func(string)) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("watcher: failed to resolve path %s: %w", file, err)
		}

		dir := filepath.Dir(absPath)
		if !fw.dirs[dir] {
			if err := fw.watcher.Add(dir); err != nil {
				return fmt.Errorf("watcher: failed to watch %s: %w", dir, err)
			}
			fw.dirs[dir] = true
		}

		fw.callbacks[absPath] = callback
	}

	return nil
}

// Start processing file system events in a background goroutine.
func (fw *FileWatcher) Start() {
	fw.mu.Lock()
	fw.started = true
	fw.mu.Unlock()

	go func() {
		defer close(fw.done)
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					fw.handleFileChange(filepath.Clean(event.Name))
				}
			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				fw.logger.Warningf("watcher error: %v", err)
			}
		}
	}()
}

// Restart the debounce timer for a changed file.
func (fw *FileWatcher) handleFileChange(filePath string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	callback, exists := fw.callbacks[filePath]
	if !exists {
		return
	}

	if timer, exists := fw.timers[filePath]; exists {
		timer.Stop()
	}

	fw.logger.Debugf("detected change to %s", filePath)
	fw.timers[filePath] = time.AfterFunc(fw.debounce, func() {
		callback(filePath)
	})
}

// Stop watching and cancel any pending callbacks. If Start was called, Close
// waits for the event loop to exit.
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	for _, timer := range fw.timers {
		timer.Stop()
	}
	fw.timers = make(map[string]*time.Timer)
	started := fw.started
	fw.mu.Unlock()

	err := fw.watcher.Close()
	if started {
		<-fw.done
	}
	return err
}
