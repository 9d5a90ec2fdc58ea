// Package config loads, normalizes, and validates scanner configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SNIPE_URL and SNIPE_API_TOKEN. The Config type centralizes every knob the
// daemon and CLI need: batch file location, archive directory, registry
// credentials, and notification settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
