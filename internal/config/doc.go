// Package config loads, normalizes, and validates foldersort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// FOLDERSORT_CATEGORIES. The Config type centralizes the knobs the CLI needs:
// where the category table and undo journal live, default organize options,
// and log output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
