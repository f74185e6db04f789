// Package pipeline coordinates the exporter: it owns the asset store, the
// selection and the single background worker, and enforces the
// idle → loading → ready → exporting → ready lifecycle.
//
// Front ends drive the Controller from one goroutine and receive background
// notifications through an Observer. Selection changes are rejected unless
// the controller is ready, so an export always sees a stable snapshot.
package pipeline
