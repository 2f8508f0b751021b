// Package logging provides slog construction helpers and the attribute
// vocabulary shared by the daemon, pipeline, and scheduler components.
package logging
