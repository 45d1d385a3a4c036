// Package logging builds the slog loggers used across the pipeline.
//
// Two output formats are supported: a human-oriented console format that
// groups attributes under a header line, and plain JSON for log shipping.
// Helpers standardize common attribute keys (component, item_id, stage) so
// stage handlers and the CLI emit consistent records.
package logging
