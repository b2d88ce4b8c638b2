// Package logging wires log/slog for the vpdkit CLI.
//
// It provides a console handler that renders compact single-line records, a
// JSON handler for machine consumption, attribute helpers with standardized
// field names, and a no-op logger for tests. Commands attach a component
// attribute per subsystem and a run correlation ID so the audit trail of a
// single organize or repair run can be filtered out of a shared log file.
package logging
