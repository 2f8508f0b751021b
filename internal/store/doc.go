// Package store persists content items, schedule entries, publish
// history, and runtime settings in SQLite. Status transitions are
// compare-and-set updates keyed by row id, which gives the pipeline and
// the publish subsystem their per-item serialization guarantee.
package store
