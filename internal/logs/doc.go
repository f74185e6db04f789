// Package logs reads the exporter log file for the CLI: the last N lines,
// optionally narrowed to one export run or to lifecycle events, and a polling
// follow mode that stops when its context ends.
package logs
