// Package config defines the explicit configuration struct for driveguard
// and its loading order: built-in defaults, then an optional TOML file,
// then environment variables. Command-line flags are applied on top by the
// cmd package.
package config
