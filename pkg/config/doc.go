// Package config loads application configuration from PARTDEX_* environment
// variables and validates it before startup.
package config
