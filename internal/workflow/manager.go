package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"broll/internal/config"
	"broll/internal/logging"
	"broll/internal/notifications"
	"broll/internal/queue"
	"broll/internal/stage"
)

// StageSet bundles the concrete pipeline handlers the manager orchestrates.
type StageSet struct {
	Transcriber stage.Handler
	Planner     stage.Handler
	Fetcher     stage.Handler
	Renderer    stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// Manager coordinates queue processing using the registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	notifier     notifications.Service
	pollInterval time.Duration

	stages       []pipelineStage
	stageByStart map[queue.Status]pipelineStage
	statusOrder  []queue.Status

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Item
}

// NewManager constructs a workflow manager with the configured notifier.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow-manager"),
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
	}
}

// ConfigureStages registers the pipeline handlers against their queue
// transitions. Every waiting status maps through its processing status to the
// status the next stage picks up.
func (m *Manager) ConfigureStages(set StageSet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stages = []pipelineStage{
		{name: "transcription", handler: set.Transcriber, startStatus: queue.StatusPending, processingStatus: queue.StatusTranscribing, doneStatus: queue.StatusTranscribed},
		{name: "planning", handler: set.Planner, startStatus: queue.StatusTranscribed, processingStatus: queue.StatusPlanning, doneStatus: queue.StatusPlanned},
		{name: "fetching", handler: set.Fetcher, startStatus: queue.StatusPlanned, processingStatus: queue.StatusFetching, doneStatus: queue.StatusFetched},
		{name: "rendering", handler: set.Renderer, startStatus: queue.StatusFetched, processingStatus: queue.StatusRendering, doneStatus: queue.StatusCompleted},
	}
	m.stageByStart = make(map[queue.Status]pipelineStage, len(m.stages))
	m.statusOrder = make([]queue.Status, 0, len(m.stages))
	for _, stg := range m.stages {
		m.stageByStart[stg.startStatus] = stg
		m.statusOrder = append(m.statusOrder, stg.startStatus)
	}
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastItem(item *queue.Item) {
	m.mu.Lock()
	if item != nil {
		copied := *item
		m.lastItem = &copied
	} else {
		m.lastItem = nil
	}
	m.mu.Unlock()
}
