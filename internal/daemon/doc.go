// Package daemon wires the generation pipeline, the publish scheduler
// and the token-authenticated control API into a single long-running
// process guarded by a lock file.
package daemon
