// Package config handles configuration loading, parsing, and validation
// from environment variables (TASKS_ prefix) and an optional YAML file.
// Environment variables win over file values, which win over defaults.
package config
