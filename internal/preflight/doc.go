// Package preflight checks that the exporter can run: directories are
// accessible, the version catalog parses, the client files match the default
// version, the history journal opens and no other exporter holds the lock.
//
// The status command renders the results; nothing here mutates state except
// the history journal schema, which Open migrates.
package preflight
