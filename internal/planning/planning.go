package planning

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"log/slog"

	"broll/internal/broll"
	"broll/internal/config"
	"broll/internal/imagery"
	"broll/internal/keywords"
	"broll/internal/logging"
	"broll/internal/planner"
	"broll/internal/queue"
	"broll/internal/services"
	"broll/internal/stage"
	"broll/internal/transcript"
)

// Artifact names written into the item staging directory.
const (
	KeywordsFileName = "keywords.json"
	PlanFileName     = "plan.json"
)

// Planner is the stage that turns a transcript into a versioned insertion plan.
type Planner struct {
	store       *queue.Store
	cfg         *config.Config
	logger      *slog.Logger
	newResolver func() planner.ImageResolver
}

// NewPlanner builds the planning stage with the configured provider chain.
// The chain and its resolver are rebuilt for every item: the used-image
// set belongs to a single planning pass, so a long-lived stage must not
// carry dedup state from one video into the next.
func NewPlanner(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Planner {
	timeout := time.Duration(cfg.Providers.RequestTimeout) * time.Second
	p := &Planner{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "planner"),
	}
	p.newResolver = func() planner.ImageResolver {
		return imagery.NewResolver(imagery.Chain(cfg, logger), timeout, logger)
	}
	return p
}

// NewPlannerWithResolver allows injecting the image resolver (used in tests).
func NewPlannerWithResolver(cfg *config.Config, store *queue.Store, logger *slog.Logger, resolver planner.ImageResolver) *Planner {
	return &Planner{
		store:       store,
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "planner"),
		newResolver: func() planner.ImageResolver { return resolver },
	}
}

func (p *Planner) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Planning", "Preparing insertion planning")

	if item.TranscriptPath == "" {
		return services.Wrap(services.ErrValidation, "planning", "validate inputs",
			"No transcript recorded for this item; transcription must run first", nil)
	}
	if item.StagingDir == "" {
		return services.Wrap(services.ErrValidation, "planning", "validate inputs",
			"No staging directory recorded for this item", nil)
	}
	return nil
}

func (p *Planner) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)

	model, err := transcript.Load(item.TranscriptPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "planning", "load transcript",
			fmt.Sprintf("Transcript %s is unreadable", item.TranscriptPath), err)
	}
	if model.VideoDuration <= 0 {
		return services.Wrap(services.ErrValidation, "planning", "load transcript",
			"Transcript carries no video duration", nil)
	}

	item.SetProgress("Planning", "Extracting keywords", 20)
	if err := p.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist progress", logging.Error(err))
	}

	occurrences := keywords.Extract(model, keywords.Options{
		PriorityTerms:  p.cfg.Keywords.PriorityTerms,
		ExtraStopwords: p.cfg.Keywords.ExtraStopwords,
		MinWeight:      p.cfg.Keywords.MinWeight,
		MaxPhraseWords: p.cfg.Keywords.MaxPhraseWords,
	})
	keywordsPath := filepath.Join(item.StagingDir, KeywordsFileName)
	if err := keywords.Save(keywordsPath, occurrences); err != nil {
		return services.Wrap(services.ErrTransient, "planning", "write keywords",
			"Could not persist the keyword artifact", err)
	}
	item.KeywordsPath = keywordsPath
	logger.Info("keywords extracted", logging.Int("occurrences", len(occurrences)))

	item.SetProgress("Planning", "Resolving images and scheduling insertions", 50)
	if err := p.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist progress", logging.Error(err))
	}

	engine, err := planner.New(planner.SettingsFromConfig(p.cfg), p.newResolver(), logger)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "planning", "configure planner",
			"Planner settings are invalid", err)
	}
	plan, err := engine.Plan(ctx, occurrences, model.VideoDuration)
	if err != nil {
		return services.Wrap(services.ErrTransient, "planning", "schedule insertions",
			"Insertion planning failed", err)
	}

	planPath := filepath.Join(item.StagingDir, PlanFileName)
	if err := broll.Save(planPath, plan); err != nil {
		return services.Wrap(services.ErrTransient, "planning", "write plan",
			"Could not persist the insertion plan", err)
	}
	item.PlanPath = planPath
	item.SetProgressComplete("Planned", fmt.Sprintf("Plan ready (%d insertions, %d placeholder images)", len(plan.Events), plan.FallbackCount))

	logger.Info("plan written",
		logging.Int("events", len(plan.Events)),
		logging.Int("fallbacks", plan.FallbackCount),
		logging.String("plan", planPath))
	return nil
}

// HealthCheck reports which image providers are usable with the loaded
// credentials. The chain always ends in a keyless placeholder provider, so
// planning itself is never blocked.
func (p *Planner) HealthCheck(context.Context) stage.Health {
	const name = "planner"
	keyed := 0
	if p.cfg.Providers.PexelsAPIKey != "" {
		keyed++
	}
	if p.cfg.Providers.PixabayAPIKey != "" {
		keyed++
	}
	if keyed == 0 {
		return stage.Health{
			Name:   name,
			Ready:  true,
			Detail: "no provider API keys configured; stock lookups fall back to placeholder images",
		}
	}
	return stage.Healthy(name)
}
