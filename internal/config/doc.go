// Package config loads, normalizes, and validates broll configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PEXELS_API_KEY and PIXABAY_API_KEY. The Config type centralizes every knob
// the CLI and watch daemon need, so directories, provider credentials, and
// planner spacing limits are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
// Bad interval bounds such as min_interval > max_interval are rejected
// here, not mid-plan.
package config
