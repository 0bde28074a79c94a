// Package logging builds the slog loggers used by every curator command.
//
// Two handlers are available: a compact console format for terminals and a
// JSON format for machine consumption. Standardized keys (component,
// event_type, error_hint, impact, session_id) keep records from the
// matching, blacklist, dedupe, and cleanup engines greppable side by side.
package logging
