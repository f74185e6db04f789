// Package config loads, normalizes, and validates exporter configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the OBDEXPORTER_HOME fallback for
// the application directory. Client, output, catalog, state, and log locations
// all derive from the application directory unless set explicitly.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
