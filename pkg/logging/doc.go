// Package logging provides a thin, subsystem-tagged wrapper around
// log/slog for CLI output. It is initialized once at application
// startup and used by all internal packages.
package logging
