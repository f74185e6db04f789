package pipeline

import (
	"fmt"

	"obdexporter/internal/export"
	"obdexporter/internal/faults"
)

// State is the controller lifecycle position.
type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StateReady     State = "ready"
	StateExporting State = "exporting"
)

// Busy reports whether a background operation is running.
func (s State) Busy() bool {
	return s == StateLoading || s == StateExporting
}

var (
	// ErrBusy is returned when an operation is requested while a load or
	// export runs.
	ErrBusy = fmt.Errorf("%w: another operation is running", faults.ErrState)
	// ErrNotReady is returned when an export is requested before a load.
	ErrNotReady = fmt.Errorf("%w: client assets are not loaded", faults.ErrState)
	// ErrSelectionLocked is returned for selection changes outside the ready state.
	ErrSelectionLocked = fmt.Errorf("%w: selection can only change while ready", faults.ErrState)
	// ErrEmptySelection is returned when an export is requested with nothing selected.
	ErrEmptySelection = export.ErrEmptySelection
)
