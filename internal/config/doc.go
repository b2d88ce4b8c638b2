// Package config loads, normalizes, and validates vpdkit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from ~/.config/vpdkit/config.toml or a
// project-local vpdkit.toml. The Config type centralizes every knob the CLI
// needs; a missing config file is not an error.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
