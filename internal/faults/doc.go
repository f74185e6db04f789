// Package faults defines the error markers shared by the export pipeline.
//
// Components wrap their failures with Wrap so callers can classify them with
// errors.Is against a marker (ErrLoad, ErrIO, ...) while still seeing which
// component and operation produced the error.
package faults
