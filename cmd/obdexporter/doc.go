// Command obdexporter exports things from a game client archive into
// standalone OBD container files.
//
// The CLI loads the configuration once per invocation, resolves the client
// version against the version catalog, and drives a pipeline.Controller for
// loading, selection and export. One-shot commands (things, export) load,
// act and exit; the session command keeps the controller alive and reads
// commands from stdin. Export runs are journaled to the history database
// unless disabled.
package main
