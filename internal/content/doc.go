// Package content defines the content item model, its status state
// machine, and the structured script payload shared by the pipeline and
// publish subsystems. CanTransition is the single choke point for status
// edges; the store enforces it with compare-and-set updates.
package content
