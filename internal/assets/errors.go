package assets

import (
	"fmt"

	"obdexporter/internal/faults"
	"obdexporter/internal/thing"
)

var (
	// ErrNotLoaded is returned by lookups issued before a successful load.
	ErrNotLoaded = fmt.Errorf("%w: load client assets first", faults.ErrNotLoaded)
	// ErrLoadInProgress is returned when Load is called while another load runs.
	ErrLoadInProgress = fmt.Errorf("%w: asset load already in progress", faults.ErrState)
)

// LoadError reports a failed archive load. The store moves to the failed
// state and a later Load may retry.
type LoadError struct {
	DatPath string
	SprPath string
	Version uint16
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load client %d assets (%s, %s): %v", e.Version, e.DatPath, e.SprPath, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is matches faults.ErrLoad so callers can classify without the concrete type.
func (e *LoadError) Is(target error) bool { return target == faults.ErrLoad }

// UnknownThingError is returned when an identity is absent from the archive.
type UnknownThingError struct {
	Identity thing.Identity
}

func (e *UnknownThingError) Error() string {
	return fmt.Sprintf("unknown thing: %s", e.Identity)
}

// Is matches faults.ErrUnknownThing.
func (e *UnknownThingError) Is(target error) bool { return target == faults.ErrUnknownThing }
