package assets

import (
	"obdexporter/internal/versions"
)

// Phase is the lifecycle position of a Store.
type Phase string

const (
	PhaseUnloaded Phase = "unloaded"
	PhaseLoading  Phase = "loading"
	PhaseLoaded   Phase = "loaded"
	PhaseFailed   Phase = "failed"
)

// Status is a snapshot of the store state.
type Status struct {
	Phase   Phase
	Version versions.Version
	Err     error
}

// Loaded reports whether lookups are currently valid.
func (s Status) Loaded() bool {
	return s.Phase == PhaseLoaded
}

// state is the tagged store state. Only loaded carries an archive and only
// failed carries an error.
type state interface {
	status() Status
}

type unloaded struct{}

type loading struct {
	version versions.Version
}

type loaded struct {
	version versions.Version
	archive Archive
}

type failed struct {
	version versions.Version
	err     error
}

func (unloaded) status() Status  { return Status{Phase: PhaseUnloaded} }
func (s loading) status() Status { return Status{Phase: PhaseLoading, Version: s.version} }
func (s loaded) status() Status  { return Status{Phase: PhaseLoaded, Version: s.version} }
func (s failed) status() Status  { return Status{Phase: PhaseFailed, Version: s.version, Err: s.err} }
