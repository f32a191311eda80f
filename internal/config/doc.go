// Package config loads and validates the YAML client configuration with
// environment variable overrides.
package config
