package main

import (
	"log/slog"

	"broll/internal/config"
	"broll/internal/fetch"
	"broll/internal/planning"
	"broll/internal/queue"
	"broll/internal/render"
	"broll/internal/transcription"
	"broll/internal/workflow"
)

func registerStages(mgr *workflow.Manager, cfg *config.Config, store *queue.Store, logger *slog.Logger) {
	if mgr == nil || cfg == nil {
		return
	}

	mgr.ConfigureStages(workflow.StageSet{
		Transcriber: transcription.NewTranscriber(cfg, store, logger),
		Planner:     planning.NewPlanner(cfg, store, logger),
		Fetcher:     fetch.NewFetcher(cfg, store, logger),
		Renderer:    render.NewRenderer(cfg, store, logger),
	})
}
