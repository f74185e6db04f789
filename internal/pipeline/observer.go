package pipeline

import (
	"obdexporter/internal/export"
	"obdexporter/internal/versions"
)

// Observer receives background notifications. All calls for one operation
// come from a single goroutine, in order: progress values never decrease and
// exactly one completion call ends the operation. The controller has already
// left the Loading/Exporting state when a completion call arrives.
type Observer interface {
	LoadProgress(percent int)
	LoadCompleted(version versions.Version, err error)
	ExportProgress(progress export.Progress)
	ExportCompleted(outcome *export.Outcome)
}

// NopObserver ignores every notification. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) LoadProgress(int)                      {}
func (NopObserver) LoadCompleted(versions.Version, error) {}
func (NopObserver) ExportProgress(export.Progress)        {}
func (NopObserver) ExportCompleted(*export.Outcome)       {}

var _ Observer = NopObserver{}
