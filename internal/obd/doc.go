// Package obd writes and reads the single-thing container files produced by
// an export. Each file holds one descriptor tagged with its client version and
// archive signatures; later format versions add sprite data and a checksum.
package obd
