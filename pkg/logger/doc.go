// Package logger builds configured log/slog loggers with an options pattern
// and provides typed attribute helpers shared across the backend.
//
// The factory defaults to production-safe settings (JSON, info level) and
// offers development and production presets. Attribute helpers (Error,
// UserID, Component, Event) keep log keys consistent between services so
// records aggregate cleanly.
package logger
