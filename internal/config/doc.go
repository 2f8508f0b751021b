// Package config loads, validates, and normalizes the TOML configuration
// for the EduStream daemon. Platform credentials are resolved from the
// environment so secrets never land in the config file.
package config
