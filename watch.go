package duckblog

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Invalidator drops cached entries. *ContentCache implements it.
type Invalidator interface {
	Invalidate(key string)
}

// ContentWatcher invalidates cache entries when their documents change on
// disk, so edits show up before the TTL runs out.
type ContentWatcher struct {
	root    string
	watcher *fsnotify.Watcher
	target  Invalidator
	logger  *zap.Logger
}

// NewContentWatcher watches every directory below root.
func NewContentWatcher(root string, target Invalidator, logger *zap.Logger) (*ContentWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("duckblog: create watcher: %w", err)
	}
	cw := &ContentWatcher{root: root, watcher: w, target: target, logger: logger}
	if cw.logger == nil {
		cw.logger = zap.NewNop()
	}
	if err := cw.addRecursive(root); err != nil {
		w.Close()
		return nil, err
	}
	return cw, nil
}

func (cw *ContentWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != root {
				return filepath.SkipDir
			}
			return cw.watcher.Add(p)
		}
		return nil
	})
}

// Run processes events until ctx is done.
func (cw *ContentWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.handle(event)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("content watcher error", zap.Error(err))
		}
	}
}

func (cw *ContentWatcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if isDir(event.Name) {
			if err := cw.addRecursive(event.Name); err != nil {
				cw.logger.Warn("watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			// Files written before the watch was added produce no events.
			cw.invalidateTree(event.Name)
			return
		}
	}
	if event.Op&fsnotify.Chmod == event.Op {
		return
	}
	key, ok := KeyForPath(cw.root, event.Name)
	if !ok {
		return
	}
	cw.logger.Debug("content changed", zap.String("key", key), zap.String("op", event.Op.String()))
	cw.target.Invalidate(key)
}

func (cw *ContentWatcher) invalidateTree(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if key, ok := KeyForPath(cw.root, p); ok {
			cw.target.Invalidate(key)
		}
		return nil
	})
}

// Close stops the underlying watcher.
func (cw *ContentWatcher) Close() error {
	return cw.watcher.Close()
}

// KeyForPath maps a file below root to the content key it belongs to:
// <key>.md, <key>/index.md and anything under <key>/images/ all map to key.
func KeyForPath(root, name string) (string, bool) {
	rel, err := filepath.Rel(root, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if i := strings.Index(rel, "/"+imagesDir+"/"); i > 0 {
		return rel[:i], true
	}
	if strings.HasSuffix(rel, "/"+imagesDir) {
		return strings.TrimSuffix(rel, "/"+imagesDir), true
	}
	if !strings.HasSuffix(rel, docExt) {
		return "", false
	}
	rel = strings.TrimSuffix(rel, docExt)
	if rel == indexName {
		return "", false
	}
	return strings.TrimSuffix(rel, "/"+indexName), true
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
