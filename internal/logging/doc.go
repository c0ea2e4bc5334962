// Package logging builds slog loggers for shelfscan commands and components.
//
// Two output formats are supported: a console handler that prints compact
// key=value lines for interactive use, and the stdlib JSON handler with
// normalized field names for log files. Attr helpers keep call sites terse and
// NewComponentLogger standardizes the component attribute that the console
// handler promotes into the message prefix.
package logging
