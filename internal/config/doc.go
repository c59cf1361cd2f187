// Package config loads and validates service configuration from YAML,
// with ${VAR} environment expansion and optional .env bootstrapping.
package config
