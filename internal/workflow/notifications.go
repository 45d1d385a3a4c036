package workflow

import (
	"context"

	"broll/internal/broll"
	"broll/internal/logging"
	"broll/internal/queue"
)

func (m *Manager) notifyDetected(ctx context.Context, item *queue.Item) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyVideoDetected(ctx, item.Title); err != nil {
		m.logger.Warn("video detected notification failed", logging.Error(err))
	}
}

func (m *Manager) notifyStageOutcome(ctx context.Context, stg pipelineStage, item *queue.Item) {
	if m.notifier == nil {
		return
	}
	switch item.Status {
	case queue.StatusPlanned:
		insertions, fallbacks := planCounts(item.PlanPath)
		if err := m.notifier.NotifyPlanReady(ctx, item.Title, insertions, fallbacks); err != nil {
			m.logger.Warn("plan ready notification failed", logging.Error(err))
		}
	case queue.StatusCompleted:
		if err := m.notifier.NotifyProcessingCompleted(ctx, item.Title, item.OutputFile); err != nil {
			m.logger.Warn("completion notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) notifyFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	if m.notifier == nil {
		return
	}
	if item.Status == queue.StatusReview {
		if err := m.notifier.NotifyReviewRequired(ctx, item.Title, item.ReviewReason); err != nil {
			m.logger.Warn("review notification failed", logging.Error(err))
		}
		return
	}
	if err := m.notifier.NotifyError(ctx, stageErr, stageName); err != nil {
		m.logger.Warn("error notification failed", logging.Error(err))
	}
}

func planCounts(planPath string) (insertions, fallbacks int) {
	if planPath == "" {
		return 0, 0
	}
	plan, err := broll.Load(planPath)
	if err != nil {
		return 0, 0
	}
	return len(plan.Events), plan.FallbackCount
}
