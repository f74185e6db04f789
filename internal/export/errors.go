package export

import (
	"fmt"
	"strings"

	"obdexporter/internal/faults"
	"obdexporter/internal/thing"
)

// ErrEmptySelection is returned when a run is requested with no items.
var ErrEmptySelection = fmt.Errorf("%w: nothing selected for export", faults.ErrState)

// IOError reports a filesystem failure during a run. Identity is nil when the
// failure happened before any item was processed (output directory creation).
type IOError struct {
	Op       string
	Path     string
	Identity *thing.Identity
	Err      error
}

func (e *IOError) Error() string {
	var b strings.Builder
	b.WriteString("export: ")
	b.WriteString(e.Op)
	if e.Identity != nil {
		fmt.Fprintf(&b, " for %s", e.Identity)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *IOError) Unwrap() error { return e.Err }

// Is matches faults.ErrIO.
func (e *IOError) Is(target error) bool { return target == faults.ErrIO }

// ItemFailure names the thing that aborted a run and why.
type ItemFailure struct {
	Identity thing.Identity
	Err      error
}

func (f *ItemFailure) Error() string {
	return fmt.Sprintf("export %s: %v", f.Identity, f.Err)
}

func (f *ItemFailure) Unwrap() error { return f.Err }
