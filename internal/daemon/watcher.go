package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/fsnotify/fsnotify"

	"broll/internal/config"
	"broll/internal/logging"
	"broll/internal/queue"
)

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".avi":  {},
	".webm": {},
}

// Watcher observes the incoming directory and enqueues video files once they
// stop growing. Partial uploads settle before they are picked up.
type Watcher struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger

	settle time.Duration

	mu      sync.Mutex
	pending map[string]pendingFile

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// onEnqueue is invoked after an item is queued (used in tests).
	onEnqueue func(*queue.Item)
}

type pendingFile struct {
	lastEvent time.Time
	lastSize  int64
}

// NewWatcher builds an incoming-directory watcher.
func NewWatcher(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Watcher {
	settle := time.Duration(cfg.Workflow.SettleSeconds) * time.Second
	if settle <= 0 {
		settle = 3 * time.Second
	}
	return &Watcher{
		cfg:     cfg,
		store:   store,
		logger:  logging.NewComponentLogger(logger, "watcher"),
		settle:  settle,
		pending: make(map[string]pendingFile),
	}
}

// Start begins watching the incoming directory. Files already present are
// enqueued on the first settle pass.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.cfg.Paths.IncomingDir, 0o755); err != nil {
		return err
	}
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := notify.Add(w.cfg.Paths.IncomingDir); err != nil {
		notify.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.scanExisting()

	w.wg.Add(2)
	go w.consumeEvents(runCtx, notify)
	go w.settleLoop(runCtx)

	w.logger.Info("watching incoming directory",
		logging.String("dir", w.cfg.Paths.IncomingDir),
		logging.Duration("settle", w.settle))
	return nil
}

// Stop terminates the watcher and waits for its goroutines.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.cancel = nil
	w.wg.Wait()
}

// scanExisting registers files already sitting in the incoming directory so a
// restart never strands them.
func (w *Watcher) scanExisting() {
	entries, err := os.ReadDir(w.cfg.Paths.IncomingDir)
	if err != nil {
		w.logger.Warn("failed to scan incoming directory", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.track(filepath.Join(w.cfg.Paths.IncomingDir, entry.Name()))
	}
}

func (w *Watcher) consumeEvents(ctx context.Context, notify *fsnotify.Watcher) {
	defer w.wg.Done()
	defer notify.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-notify.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.track(event.Name)
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.forget(event.Name)
			}
		case err, ok := <-notify.Errors:
			if !ok {
				return
			}
			w.logger.Warn("filesystem watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) track(path string) {
	if !eligibleVideo(path) {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.pending[path] = pendingFile{lastEvent: time.Now(), lastSize: info.Size()}
	w.mu.Unlock()
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	w.mu.Unlock()
}

func (w *Watcher) settleLoop(ctx context.Context) {
	defer w.wg.Done()

	interval := w.settle / 3
	if interval < 250*time.Millisecond {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.enqueueSettled(ctx)
		}
	}
}

func (w *Watcher) enqueueSettled(ctx context.Context) {
	now := time.Now()

	w.mu.Lock()
	ready := make([]string, 0, len(w.pending))
	for path, state := range w.pending {
		info, err := os.Stat(path)
		if err != nil {
			delete(w.pending, path)
			continue
		}
		if info.Size() != state.lastSize {
			w.pending[path] = pendingFile{lastEvent: now, lastSize: info.Size()}
			continue
		}
		if now.Sub(state.lastEvent) >= w.settle {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		w.enqueue(ctx, path)
	}
}

func (w *Watcher) enqueue(ctx context.Context, path string) {
	existing, err := w.store.FindBySource(ctx, path)
	if err != nil {
		w.logger.Warn("failed to check for existing queue item", logging.Error(err))
		return
	}
	if existing != nil && !finished(existing.Status) {
		w.logger.Debug("file already queued", logging.String("source", path))
		return
	}

	item, err := w.store.NewVideo(ctx, path)
	if err != nil {
		w.logger.Error("failed to enqueue video", logging.String("source", path), logging.Error(err))
		return
	}
	w.logger.Info("video queued",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("source", path),
		logging.String("title", item.Title))
	if w.onEnqueue != nil {
		w.onEnqueue(item)
	}
}

func finished(status queue.Status) bool {
	switch status {
	case queue.StatusCompleted, queue.StatusFailed, queue.StatusReview:
		return true
	}
	return false
}

func eligibleVideo(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	_, ok := videoExtensions[ext]
	return ok
}
