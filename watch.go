package main

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type fileWatcher struct {
	watcher *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
}

// watchFile signals on Changes whenever path is written, created or
// replaced. The parent directory is watched so atomic renames are seen.
func watchFile(path string, logger *zap.Logger) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	fw := &fileWatcher{
		watcher: w,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(fw.done)
		defer close(fw.changes)

		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				select {
				case fw.changes <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("file watcher error", zap.Error(err))
			}
		}
	}()
	return fw, nil
}

func (fw *fileWatcher) Changes() <-chan struct{} {
	return fw.changes
}

func (fw *fileWatcher) Close() error {
	err := fw.watcher.Close()
	<-fw.done
	return err
}
