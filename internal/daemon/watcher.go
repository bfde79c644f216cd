package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// startWatcher watches every export directory (or the parent directory of an
// export file) and requests a poll once changes settle.
func (s *Service) startWatcher(ctx context.Context) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	files := make(map[string]struct{})
	dirs := make(map[string]struct{})
	watchDirs := make(map[string]struct{})
	for _, p := range s.cfg.ExportPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			log.WithError(err).WithField("path", p).Warn("cannot watch export path")
			continue
		}
		if info.IsDir() {
			dirs[abs] = struct{}{}
			watchDirs[abs] = struct{}{}
			continue
		}
		files[abs] = struct{}{}
		watchDirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range watchDirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}

	s.mu.Lock()
	s.watching = len(watchDirs) > 0
	s.mu.Unlock()

	go s.watchLoop(ctx, watcher, files, dirs)
	return watcher, nil
}

func (s *Service) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, files, dirs map[string]struct{}) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
		s.mu.Lock()
		s.watching = false
		s.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !relevantEvent(event, files, dirs) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(s.cfg.Debounce, s.requestPoll)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("export watcher error")
		}
	}
}

// relevantEvent reports whether a filesystem event touches a watched export:
// a *.json file inside a watched directory, or an explicitly listed file.
func relevantEvent(event fsnotify.Event, files, dirs map[string]struct{}) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if _, ok := files[name]; ok {
		return true
	}
	if _, ok := dirs[filepath.Dir(name)]; !ok {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".json")
}
