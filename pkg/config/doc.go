// Package config loads typed configuration structs from environment
// variables.
//
// Parsing is delegated to github.com/caarlos0/env with struct tags, and a
// .env file is read once per process via godotenv for local development.
// Loaded configurations are cached by type: the process-wide secrets they
// carry (token signing key, escrow secret, database URL) are read exactly
// once at startup and treated as immutable thereafter. Components receive
// config structs through their constructors rather than reading ambient
// environment state.
//
// # Usage
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
// # Error Handling
//
// Load wraps parse failures with ErrParsingConfig; a missing required
// variable therefore surfaces at startup, not at first use.
package config
