// Package config loads, validates, and normalizes the TOML configuration.
//
// Configuration resolves from an explicit path, then ~/.config/snakewatch/
// config.toml, then ./snakewatch.toml in the working directory. Missing files
// fall back to defaults; every path field is expanded and absolutized before
// use.
package config
