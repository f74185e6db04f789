// Package history journals export runs in a SQLite database.
//
// Store implements export.Recorder: each run gets a row in export_runs when
// it starts, one export_artifacts row per written file, and its final status
// when it ends. Schema changes ship as embedded migrations applied on Open.
package history
