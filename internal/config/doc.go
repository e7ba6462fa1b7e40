// Package config loads the codeset CLI configuration from
// ~/.config/codeset/config.yaml with environment variable overrides.
// All values have working defaults; a missing config file is not an
// error.
package config
