package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// actionWatcher re-reads an action file whenever something rewrites it and
// hands the parsed action to send. The parent directory is watched so
// editors that replace the file are still seen.
type actionWatcher struct {
	path     string
	debounce time.Duration
	send     func(actionMsg)
	watcher  *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
}

func newActionWatcher(path string, debounce time.Duration, send func(actionMsg)) (*actionWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	return &actionWatcher{path: abs, debounce: debounce, send: send, watcher: w}, nil
}

// Run processes events until ctx is done.
func (aw *actionWatcher) Run(ctx context.Context) {
	defer aw.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			aw.mu.Lock()
			if aw.timer != nil {
				aw.timer.Stop()
			}
			aw.mu.Unlock()
			return
		case event, ok := <-aw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != aw.path {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				aw.schedule()
			}
		case err, ok := <-aw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[WARN] watch %s: %v", aw.path, err)
		}
	}
}

// schedule collapses bursts of writes into one read.
func (aw *actionWatcher) schedule() {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	if aw.timer != nil {
		aw.timer.Stop()
	}
	aw.timer = time.AfterFunc(aw.debounce, aw.load)
}

func (aw *actionWatcher) load() {
	data, err := os.ReadFile(aw.path)
	if err != nil {
		log.Printf("[WARN] read %s: %v", aw.path, err)
		return
	}
	if len(data) == 0 {
		return
	}
	a, err := parseActionText(string(data))
	if err != nil {
		log.Printf("[WARN] %s: %v", aw.path, err)
		return
	}
	aw.send(actionMsg{action: a, source: filepath.Base(aw.path)})
}
