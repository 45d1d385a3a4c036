package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"log/slog"

	"broll/internal/broll"
	"broll/internal/config"
	"broll/internal/logging"
	"broll/internal/queue"
	"broll/internal/services"
	"broll/internal/stage"
)

const (
	defaultWorkers  = 4
	imagesDirName   = "images"
	downloadTimeout = 30 * time.Second
)

// Fetcher downloads the plan's resolved images into the item staging
// directory so rendering never depends on the network.
type Fetcher struct {
	store      *queue.Store
	cfg        *config.Config
	logger     *slog.Logger
	httpClient *http.Client
}

// NewFetcher builds the image download stage.
func NewFetcher(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Fetcher {
	timeout := downloadTimeout
	if cfg.Providers.RequestTimeout > 0 {
		timeout = time.Duration(cfg.Providers.RequestTimeout) * time.Second
	}
	return &Fetcher{
		store:      store,
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "fetcher"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient replaces the download client (used in tests).
func (f *Fetcher) SetHTTPClient(client *http.Client) {
	if client != nil {
		f.httpClient = client
	}
}

func (f *Fetcher) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Fetching", "Preparing image downloads")

	if item.PlanPath == "" {
		return services.Wrap(services.ErrValidation, "fetching", "validate inputs",
			"No insertion plan recorded for this item; planning must run first", nil)
	}
	if item.StagingDir == "" {
		return services.Wrap(services.ErrValidation, "fetching", "validate inputs",
			"No staging directory recorded for this item", nil)
	}
	if err := os.MkdirAll(filepath.Join(item.StagingDir, imagesDirName), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "fetching", "create images dir",
			"Cannot create the staging images directory", err)
	}
	return nil
}

func (f *Fetcher) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, f.logger)

	plan, err := broll.Load(item.PlanPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "fetching", "load plan",
			fmt.Sprintf("Insertion plan %s is unreadable", item.PlanPath), err)
	}
	if len(plan.Events) == 0 {
		item.SetProgressComplete("Fetched", "Plan has no insertions; nothing to download")
		return nil
	}

	workers := f.cfg.Workflow.DownloadWorkers
	if workers <= 0 {
		workers = defaultWorkers
	}
	imagesDir := filepath.Join(item.StagingDir, imagesDirName)

	item.SetProgress("Fetching", fmt.Sprintf("Downloading %d images", len(plan.Events)), 10)
	if err := f.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist progress", logging.Error(err))
	}

	type result struct {
		index int
		path  string
		err   error
	}

	results := make([]result, len(plan.Events))
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range plan.Events {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			dest := filepath.Join(imagesDir, fmt.Sprintf("img_%03d.jpg", index))
			err := f.download(ctx, plan.Events[index].Image.URL, dest)
			results[index] = result{index: index, path: dest, err: err}
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	kept := make([]broll.InsertionEvent, 0, len(plan.Events))
	dropped := 0
	for _, res := range results {
		event := plan.Events[res.index]
		if res.err != nil {
			dropped++
			logger.Warn("dropping insertion after failed download",
				logging.String(logging.FieldKeyword, event.Keyword),
				logging.String("url", event.Image.URL),
				logging.Error(res.err))
			continue
		}
		event.Image.LocalPath = res.path
		kept = append(kept, event)
	}
	sort.Slice(kept, func(a, b int) bool { return kept[a].StartTime < kept[b].StartTime })
	plan.Events = kept

	if err := broll.Save(item.PlanPath, plan); err != nil {
		return services.Wrap(services.ErrTransient, "fetching", "rewrite plan",
			"Could not persist the plan with local image paths", err)
	}

	item.SetProgressComplete("Fetched", fmt.Sprintf("Downloaded %d images (%d dropped)", len(kept), dropped))
	logger.Info("image fetch complete",
		logging.Int("downloaded", len(kept)),
		logging.Int("dropped", dropped))
	return nil
}

// HealthCheck is a no-op: downloads depend only on outbound HTTP, which is
// probed per request.
func (f *Fetcher) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("fetcher")
}

func (f *Fetcher) download(ctx context.Context, imageURL, dest string) error {
	if imageURL == "" {
		return fmt.Errorf("download: empty image URL")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("download: build request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %d", imageURL, resp.StatusCode)
	}

	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("download: create %s: %w", dest, err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(dest)
		return fmt.Errorf("download: write %s: %w", dest, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("download: close %s: %w", dest, err)
	}
	return nil
}
