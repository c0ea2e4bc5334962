// Package config loads and validates shelfscan configuration.
//
// Configuration is layered: compiled-in defaults, then an optional TOML file
// (~/.config/shelfscan/config.toml or ./shelfscan.toml), then SHELFSCAN_*
// environment variables. A .env file in the working directory is honored so
// API keys can stay out of the config file. Load returns a normalized config
// with all paths expanded; callers should treat the value as immutable.
package config
