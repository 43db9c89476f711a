package filesystem

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/slipdeck/internal/logger"
)

// settleDelay is how long a file must stay quiet before it is reported.
// Spreadsheet saves arrive as bursts of write events; emitting on the
// first one would hand the extractor a half-written workbook.
const settleDelay = 500 * time.Millisecond

// Watcher reports new workbooks dropped into an inbox directory.
type Watcher struct {
	inbox string

	mu     sync.Mutex
	closed bool
	fw     *fsnotify.Watcher
}

// NewWatcher creates a watcher for the given inbox directory.
func NewWatcher(inbox string) *Watcher {
	return &Watcher{inbox: inbox}
}

// Watch starts watching the inbox and returns a channel of settled
// workbook paths. The channel closes when ctx is cancelled or the
// watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, fmt.Errorf("watcher is closed")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(w.inbox); err != nil {
		fw.Close()
		return nil, fmt.Errorf("inbox path error: %w", err)
	}
	w.fw = fw

	out := make(chan string)
	go w.run(ctx, fw, out)

	logger.Info("Watching %s for placement slips", w.inbox)
	return out, nil
}

// Close stops the watcher. Idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.fw != nil {
		return w.fw.Close()
	}
	return nil
}

// run drains fsnotify events, coalescing write bursts per path and
// emitting each path once it has been quiet for settleDelay.
func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, out chan<- string) {
	defer close(out)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settleDelay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !isWorkbook(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < settleDelay {
					continue
				}
				delete(pending, path)
				select {
				case out <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// isWorkbook reports whether path looks like a finished spreadsheet.
// Office lock files ("~$...") and hidden files are ignored.
func isWorkbook(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".xlsx")
}
