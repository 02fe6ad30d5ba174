// Package config loads typed configuration structs from environment
// variables (caarlos0/env tags), with optional .env support for local
// development and per-type caching so every component sees the same values.
package config
