package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"broll/internal/logging"
	"broll/internal/queue"
	"broll/internal/services"
	"broll/internal/stage"
	"broll/internal/testsupport"
	"broll/internal/workflow"
)

type stubStage struct {
	name       string
	prepareErr error
	execErr    error
	onExecute  func(item *queue.Item)
	executions int
}

func (s *stubStage) Prepare(ctx context.Context, item *queue.Item) error {
	return s.prepareErr
}

func (s *stubStage) Execute(ctx context.Context, item *queue.Item) error {
	s.executions++
	if s.execErr != nil {
		return s.execErr
	}
	if s.onExecute != nil {
		s.onExecute(item)
	}
	return nil
}

func (s *stubStage) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(s.name)
}

type recordingNotifier struct {
	mu        sync.Mutex
	detected  []string
	plans     []string
	completed []string
	reviews   []string
	errored   []string
}

func (r *recordingNotifier) NotifyVideoDetected(_ context.Context, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detected = append(r.detected, title)
	return nil
}

func (r *recordingNotifier) NotifyPlanReady(_ context.Context, title string, insertions, fallbacks int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans = append(r.plans, title)
	return nil
}

func (r *recordingNotifier) NotifyProcessingCompleted(_ context.Context, title, outputFile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, title)
	return nil
}

func (r *recordingNotifier) NotifyReviewRequired(_ context.Context, title, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews = append(r.reviews, reason)
	return nil
}

func (r *recordingNotifier) NotifyError(_ context.Context, err error, label string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errored = append(r.errored, label)
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func allStagesSucceed() workflow.StageSet {
	return workflow.StageSet{
		Transcriber: &stubStage{name: "transcriber"},
		Planner:     &stubStage{name: "planner"},
		Fetcher:     &stubStage{name: "fetcher"},
		Renderer: &stubStage{name: "renderer", onExecute: func(item *queue.Item) {
			item.OutputFile = "/out/clip_broll.mp4"
		}},
	}
}

func TestProcessOnceRunsItemToCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "clip.mp4")

	notifier := &recordingNotifier{}
	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	manager.ConfigureStages(allStagesSucceed())

	if err := manager.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("process once: %v", err)
	}

	final, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if final.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s", final.Status)
	}
	if final.OutputFile == "" {
		t.Fatal("expected output file recorded")
	}
	if final.ProgressPercent != 100 {
		t.Fatalf("expected 100%% progress, got %v", final.ProgressPercent)
	}
	if len(notifier.detected) != 1 {
		t.Fatalf("expected one detection notification, got %d", len(notifier.detected))
	}
	if len(notifier.completed) != 1 {
		t.Fatalf("expected one completion notification, got %d", len(notifier.completed))
	}
}

func TestProcessOnceRoutesValidationFailureToReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "clip.mp4")

	set := allStagesSucceed()
	set.Planner = &stubStage{
		name:    "planner",
		execErr: services.Wrap(services.ErrValidation, "planning", "load transcript", "Transcript is unreadable", nil),
	}

	notifier := &recordingNotifier{}
	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	manager.ConfigureStages(set)

	if err := manager.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("process once: %v", err)
	}

	final, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if final.Status != queue.StatusReview {
		t.Fatalf("expected review, got %s", final.Status)
	}
	if !final.NeedsReview {
		t.Fatal("expected needs_review flag")
	}
	if len(notifier.reviews) != 1 {
		t.Fatalf("expected one review notification, got %d", len(notifier.reviews))
	}
}

func TestProcessOnceRoutesToolFailureToFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "clip.mp4")

	set := allStagesSucceed()
	set.Transcriber = &stubStage{
		name:    "transcriber",
		execErr: services.Wrap(services.ErrExternalTool, "transcribing", "run whisperx", "WhisperX crashed", errors.New("exit status 1")),
	}

	notifier := &recordingNotifier{}
	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	manager.ConfigureStages(set)

	if err := manager.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("process once: %v", err)
	}

	final, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if final.Status != queue.StatusFailed {
		t.Fatalf("expected failed, got %s", final.Status)
	}
	if final.ErrorMessage == "" {
		t.Fatal("expected persisted error message")
	}
	if len(notifier.errored) != 1 {
		t.Fatalf("expected one error notification, got %d", len(notifier.errored))
	}
}

func TestStartRequiresConfiguredStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &recordingNotifier{})
	if err := manager.Start(context.Background()); err == nil {
		manager.Stop()
		t.Fatal("expected error starting without stages")
	}
}

func TestStartAndStopProcessesQueuedItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "clip.mp4")

	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &recordingNotifier{})
	manager.ConfigureStages(allStagesSucceed())

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		current, err := store.GetByID(context.Background(), item.ID)
		if err != nil {
			t.Fatalf("reload item: %v", err)
		}
		if workflow.ItemFinished(current) {
			if current.Status != queue.StatusCompleted {
				t.Fatalf("expected completed, got %s", current.Status)
			}
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("item never finished")
}

func TestStatusReportsStageHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewVideo(t, store, "clip.mp4")

	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &recordingNotifier{})
	manager.ConfigureStages(allStagesSucceed())

	summary := manager.Status(context.Background())
	if summary.Running {
		t.Fatal("manager should not report running before Start")
	}
	if len(summary.StageHealth) != 4 {
		t.Fatalf("expected 4 stage health entries, got %d", len(summary.StageHealth))
	}
	for name, health := range summary.StageHealth {
		if !health.Ready {
			t.Fatalf("stage %s should be healthy: %+v", name, health)
		}
	}
	if summary.QueueStats[queue.StatusPending] != 1 {
		t.Fatalf("expected one pending item, got %v", summary.QueueStats)
	}
}
