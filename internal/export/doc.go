// Package export runs a batch export: every selected thing is described,
// encoded into a container and written to the output directory as
// {Category}_{Id}.obd, with per-item progress and a single outcome.
//
// A run aborts on the first failure and leaves earlier files in place.
// Existing files with the same name are overwritten.
package export
