// Package services holds the error taxonomy shared by external
// collaborators (LLM, platform publishers) and the components that
// consume them.
package services
