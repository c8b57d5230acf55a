// Package config loads, normalizes, and validates vodkeep configuration.
//
// Configuration comes from a TOML file (default ~/.config/vodkeep/config.toml
// or ./vodkeep.toml), optionally overridden by VODKEEP_* environment
// variables, which may themselves be seeded from a .env file.
package config
