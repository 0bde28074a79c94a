// Package config loads, normalizes, and validates curator configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the CURATOR_SIMULATE environment
// override. State files (judged pairs, blacklist, cleanup whitelist, hash
// database) resolve relative to the state directory so a single directory
// holds everything the tool persists between runs.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, trimmed name lists, and clear validation errors.
package config
