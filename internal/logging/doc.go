// Package logging assembles the structured slog loggers used across the
// exporter.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context helpers that tag records with the export run id and pipeline stage.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
