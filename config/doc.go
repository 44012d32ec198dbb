// Package config loads the daemon configuration from a YAML file, a .env
// file, and the process environment, in that order of increasing
// precedence. Viper does the merging; struct tags drive validation.
package config
