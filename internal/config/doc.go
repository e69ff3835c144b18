// Package config loads, normalizes, and validates dupicheck configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs: matching thresholds, cache database naming, hashing worker
// limits, and log output settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized values, canonical log formats, and clear validation errors.
package config
