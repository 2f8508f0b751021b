// Package notifications delivers pipeline and publishing events via
// pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic
// configured in config.toml and gracefully degrades to a no-op when
// notifications are disabled. Per-category toggles let operators keep
// error alerts while silencing routine generation chatter.
//
// Extend this package if you need alternative transports; all daemon
// code depends only on the Service interface.
package notifications
