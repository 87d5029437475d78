// Package config loads, normalizes, and validates timeweave configuration.
//
// It supplies defaults for every pipeline knob, expands user paths (tilde
// shortcuts included), reads TOML files, and honours TIMEWEAVE_CACHE_DIR and
// XDG_CACHE_HOME when placing the result cache. Obtain settings through this
// package so downstream code receives trimmed abbreviation lists, canonical
// log formats, and clear validation errors.
package config
