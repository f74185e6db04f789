package faults_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"obdexporter/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrIO, "export", "write artifact", "Item_100.obd", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"export", "write artifact", "Item_100.obd"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := faults.Wrap(faults.ErrState, "", "", "", nil)
	if !errors.Is(err, faults.ErrState) {
		t.Fatalf("expected state marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "operation failed") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := faults.Wrap(nil, "export", "mkdir", "", errors.New("denied"))
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected io marker fallback, got %v", err)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{faults.Wrap(faults.ErrLoad, "assets", "load", "", nil), "load"},
		{fmt.Errorf("outer: %w", faults.ErrNotLoaded), "not_loaded"},
		{faults.Wrap(faults.ErrUnknownThing, "assets", "describe", "", nil), "unknown_thing"},
		{faults.Wrap(faults.ErrEncode, "obd", "encode", "", nil), "encode"},
		{faults.Wrap(faults.ErrIO, "export", "write", "", nil), "io"},
		{faults.ErrState, "state"},
		{faults.ErrConfiguration, "configuration"},
		{faults.ErrValidation, "validation"},
		{errors.New("other"), "unknown"},
	}
	for _, tt := range tests {
		if got := faults.Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !faults.Retryable(faults.Wrap(faults.ErrLoad, "assets", "load", "", nil)) {
		t.Fatal("expected load failure to be retryable")
	}
	if faults.Retryable(faults.ErrIO) {
		t.Fatal("expected io failure to be terminal")
	}
}
