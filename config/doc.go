// Package config loads the YAML application configuration. Missing files
// and missing fields fall back to defaults suitable for a local
// OpenAI-compatible embedding service. API tokens are resolved from the
// environment, never stored in the file.
package config
