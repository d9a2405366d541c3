// Package config loads service settings from defaults, an optional
// config.yaml, a .env file and BANDPATH_ environment variables, and
// validates them before anything else starts.
package config
