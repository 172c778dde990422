package viewer

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/procuptime/procuptime/internal/logging"
	"github.com/sirupsen/logrus"
)

// Watcher signals when the state file is replaced. The parent directory is
// watched because atomic saves rename a new file over the old one.
type Watcher struct {
	watcher  *fsnotify.Watcher
	name     string
	debounce time.Duration
	changes  chan struct{}
	logger   *logrus.Entry
}

// NewWatcher watches path for changes.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	return &Watcher{
		watcher:  watcher,
		name:     filepath.Base(path),
		debounce: debounce,
		changes:  make(chan struct{}, 1),
		logger:   logging.NewLogger("viewer"),
	}, nil
}

// Changes delivers at most one pending notification at a time.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start pumps fsnotify events until ctx is canceled.
func (w *Watcher) Start(ctx context.Context) {
	var lastChange time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != w.name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if time.Since(lastChange) < w.debounce {
				continue
			}
			lastChange = time.Now()
			w.logger.Debugf("State file changed: %s op=%v", event.Name, event.Op)

			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.watcher.Close()
			return
		}
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
