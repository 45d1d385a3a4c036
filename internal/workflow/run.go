package workflow

import (
	"context"
	"errors"
	"time"

	"broll/internal/logging"
	"broll/internal/queue"
)

// Start begins background queue processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.statusOrder) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for in-flight work.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the processing loop is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	// Items abandoned mid-stage by a previous run go back to their waiting
	// status before the loop starts picking work.
	if reset, err := m.store.ResetStuckProcessing(ctx); err != nil {
		m.logger.Warn("failed to reset stuck processing items", logging.Error(err))
	} else if reset > 0 {
		m.logger.Info("reset stuck processing items", logging.Int64("count", reset))
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := m.store.NextForStatuses(ctx, m.statusOrder...)
		if err != nil {
			m.setLastError(err)
			m.logger.Error("failed to fetch next queue item", logging.Error(err))
			m.sleep(ctx, time.Duration(m.cfg.Workflow.ErrorRetryInterval)*time.Second)
			continue
		}
		if item == nil {
			m.sleep(ctx, m.pollInterval)
			continue
		}

		if err := m.processItem(ctx, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// ProcessOnce drains the queue synchronously, running one stage at a time
// until no further work is waiting. It is the engine behind one-shot CLI
// processing.
func (m *Manager) ProcessOnce(ctx context.Context) error {
	m.mu.RLock()
	configured := len(m.statusOrder) > 0
	m.mu.RUnlock()
	if !configured {
		return errors.New("workflow stages not configured")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		item, err := m.store.NextForStatuses(ctx, m.statusOrder...)
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}
		if err := m.processItem(ctx, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			// Stage failures are persisted on the item; keep draining the
			// rest of the queue.
			continue
		}
	}
}

// ItemFinished reports whether an item has left the active pipeline.
func ItemFinished(item *queue.Item) bool {
	if item == nil {
		return true
	}
	switch item.Status {
	case queue.StatusCompleted, queue.StatusFailed, queue.StatusReview:
		return true
	}
	return false
}
