package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending      Status = "pending"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusPlanning     Status = "planning"
	StatusPlanned      Status = "planned"
	StatusFetching     Status = "fetching"
	StatusFetched      Status = "fetched"
	StatusRendering    Status = "rendering"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusReview       Status = "review"
)

// DaemonStopReason is the error message set when items are failed due
// to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusTranscribing,
	StatusTranscribed,
	StatusPlanning,
	StatusPlanned,
	StatusFetching,
	StatusFetched,
	StatusRendering,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusTranscribing: {},
	StatusPlanning:     {},
	StatusFetching:     {},
	StatusRendering:    {},
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Review     int
	Completed  int
}

// Item represents one video moving through the pipeline, persisted in
// SQLite. Artifact paths fill in as stages complete.
type Item struct {
	ID              int64
	SourcePath      string
	Title           string
	Status          Status
	RunID           string
	StagingDir      string
	TranscriptPath  string
	KeywordsPath    string
	PlanPath        string
	OutputFile      string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	LastHeartbeat   *time.Time
	NeedsReview     bool
	ReviewReason    string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// NextStatus returns the status an item moves to when its current
// stage completes successfully.
func NextStatus(status Status) (Status, bool) {
	switch status {
	case StatusTranscribing:
		return StatusTranscribed, true
	case StatusPlanning:
		return StatusPlanned, true
	case StatusFetching:
		return StatusFetched, true
	case StatusRendering:
		return StatusCompleted, true
	}
	return "", false
}

// ProcessingStatus returns the in-flight status a waiting item enters
// when the workflow picks it up.
func ProcessingStatus(status Status) (Status, bool) {
	switch status {
	case StatusPending:
		return StatusTranscribing, true
	case StatusTranscribed:
		return StatusPlanning, true
	case StatusPlanned:
		return StatusFetching, true
	case StatusFetched:
		return StatusRendering, true
	}
	return "", false
}

// InitProgress resets progress fields for a new stage.
func (i *Item) InitProgress(stage, message string) {
	if i.ProgressStage == "" {
		i.ProgressStage = stage
	}
	i.ProgressMessage = message
	i.ProgressPercent = 0
	i.ErrorMessage = ""
}

// SetProgress updates all three progress fields together.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (i *Item) SetProgressComplete(stage, message string) {
	i.SetProgress(stage, message, 100)
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.LastHeartbeat = nil
	i.ProgressStage = "Failed"
}

// SetReview parks the item for manual attention with the given reason.
func (i *Item) SetReview(reason string) {
	i.Status = StatusReview
	i.NeedsReview = true
	i.ReviewReason = reason
	i.ErrorMessage = reason
	i.LastHeartbeat = nil
}
