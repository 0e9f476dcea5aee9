package outletfile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/domain"
)

// Replacer receives a freshly loaded outlet set.
type Replacer interface {
	Replace(outlets []domain.Outlet)
}

// Watcher reloads the outlets file whenever it changes on disk. A file
// that fails to parse is logged and the previous data stays in place.
type Watcher struct {
	path   string
	target Replacer
	logger logger.Logger
}

func NewWatcher(path string, target Replacer, logger logger.Logger) *Watcher {
	return &Watcher{path: path, target: target, logger: logger}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	// watch the directory: editors and config managers replace files
	// instead of writing them in place
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.reload()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("outlets_watch_error", "File watcher error", "", map[string]any{"path": w.path}, err)
		}
	}
}

func (w *Watcher) reload() {
	outlets, err := Load(w.path)
	if err != nil {
		w.logger.Error("outlets_reload_failed", "Keeping previous outlet directory", "", map[string]any{"path": w.path}, err)
		return
	}
	w.target.Replace(outlets)
	w.logger.Info("outlets_reloaded", "Outlet directory reloaded", "", map[string]any{"path": w.path, "outlets": len(outlets)})
}
