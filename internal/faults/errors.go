package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLoad          = errors.New("asset load failed")
	ErrNotLoaded     = errors.New("assets not loaded")
	ErrUnknownThing  = errors.New("unknown thing")
	ErrEncode        = errors.New("encode failed")
	ErrIO            = errors.New("i/o failure")
	ErrState         = errors.New("invalid state")
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short, stable label for the marker carried by err. Labels are
// persisted in the export history and shown by the CLI.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLoad):
		return "load"
	case errors.Is(err, ErrNotLoaded):
		return "not_loaded"
	case errors.Is(err, ErrUnknownThing):
		return "unknown_thing"
	case errors.Is(err, ErrEncode):
		return "encode"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrState):
		return "state"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "unknown"
	}
}

// Retryable reports whether the operation that produced err can be retried
// without changing inputs. Only load failures leave the pipeline retryable.
func Retryable(err error) bool {
	return errors.Is(err, ErrLoad)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failed"
	}
	return strings.Join(parts, ": ")
}
