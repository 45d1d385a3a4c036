package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"broll/internal/logging"
	"broll/internal/queue"
	"broll/internal/services"
)

const heartbeatInterval = 10 * time.Second

func (m *Manager) processItem(ctx context.Context, item *queue.Item) error {
	stg, ok := m.stageByStart[item.Status]
	if !ok {
		m.logger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		m.sleep(ctx, m.pollInterval)
		return nil
	}
	if stg.handler == nil {
		err := fmt.Errorf("stage %s has no handler", stg.name)
		item.SetFailed(err.Error())
		if updateErr := m.store.Update(ctx, item); updateErr != nil {
			m.logger.Error("failed to persist missing handler failure", logging.Error(updateErr))
		}
		m.setLastError(err)
		return err
	}

	runID := uuid.NewString()
	stageCtx := services.WithRunID(services.WithStage(services.WithItemID(ctx, item.ID), stg.name), runID)
	logger := logging.WithContext(stageCtx, m.logger)

	firstStage := item.Status == queue.StatusPending

	item.Status = stg.processingStatus
	item.ErrorMessage = ""
	now := time.Now().UTC()
	item.LastHeartbeat = &now
	if err := m.store.Update(stageCtx, item); err != nil {
		wrapped := fmt.Errorf("persist processing transition: %w", err)
		logger.Error("failed to transition item to processing", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	m.setLastItem(item)
	if firstStage {
		m.notifyDetected(stageCtx, item)
	}

	return m.executeStage(stageCtx, logger, stg, item)
}

func (m *Manager) executeStage(ctx context.Context, logger *slog.Logger, stg pipelineStage, item *queue.Item) error {
	stageStart := time.Now()
	logger.Info("stage started",
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("source_file", strings.TrimSpace(item.SourcePath)),
	)

	if err := stg.handler.Prepare(ctx, item); err != nil {
		m.handleStageFailure(ctx, stg.name, item, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		logger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := m.executeWithHeartbeat(ctx, stg, item)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			logger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, stg.name, item, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if item.Status == stg.processingStatus || item.Status == "" {
		item.Status = stg.doneStatus
	}
	item.LastHeartbeat = nil
	if item.Status == queue.StatusCompleted && item.ProgressPercent < 100 {
		item.ProgressPercent = 100
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		logger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	logger.Info("stage completed",
		logging.String("next_status", string(item.Status)),
		logging.String("progress_message", strings.TrimSpace(item.ProgressMessage)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastItem(item)
	m.notifyStageOutcome(ctx, stg, item)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, stg pipelineStage, item *queue.Item) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeatLoop(hbCtx, &hbWG, item.ID)

	execErr := stg.handler.Execute(ctx, item)
	hbCancel()
	hbWG.Wait()
	return execErr
}

func (m *Manager) heartbeatLoop(ctx context.Context, wg *sync.WaitGroup, itemID int64) {
	defer wg.Done()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.store.UpdateHeartbeat(ctx, itemID); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				m.logger.Warn("heartbeat update failed", logging.Error(err))
			}
		}
	}
}

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	logger := logging.WithContext(ctx, m.logger)

	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed", stageName)
	}

	resolved := services.FailureStatus(stageErr)
	if resolved == queue.StatusReview {
		item.SetReview(message)
	} else {
		item.SetFailed(message)
	}

	logger.Error("stage failed",
		logging.String("resolved_status", string(resolved)),
		logging.String("error_message", message),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutting down, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
	m.setLastItem(item)
	m.notifyFailure(ctx, stageName, item, stageErr)
}
