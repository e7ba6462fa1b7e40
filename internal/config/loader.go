package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"codeset/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/codeset"
	configFileName = "config.yaml"
)

// Environment variables recognized as overrides.
const (
	EnvAPIURL         = "CODESET_API_URL"
	EnvGitHubClientID = "CODESET_GITHUB_CLIENT_ID"
	EnvCallbackPort   = "CODESET_CALLBACK_PORT"
)

// DefaultConfigPath returns the user configuration directory for codeset.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user home directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// DefaultConfigPathOrPanic returns the user configuration directory,
// panicking when the home directory cannot be determined. Intended for
// flag defaults, which are evaluated before any error handling exists.
func DefaultConfigPathOrPanic() string {
	path, err := DefaultConfigPath()
	if err != nil {
		panic(err)
	}
	return path
}

// Load loads configuration from the specified directory, applying
// environment variable overrides on top. A missing config.yaml yields
// the defaults; a malformed one is an error.
func Load(configPath string) (Config, error) {
	if configPath == "" {
		var err error
		configPath, err = DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
	}
	configFilePath := filepath.Join(configPath, configFileName)
	config := Default()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return applyEnv(config), nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		// config malformed
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	if config.APIURL == "" {
		config.APIURL = DefaultAPIURL
	}
	if config.CallbackPort == 0 {
		config.CallbackPort = DefaultCallbackPort
	}
	logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return applyEnv(config), nil
}

func applyEnv(config Config) Config {
	if v := os.Getenv(EnvAPIURL); v != "" {
		config.APIURL = v
	}
	if v := os.Getenv(EnvGitHubClientID); v != "" {
		config.GitHubClientID = v
	}
	if v := os.Getenv(EnvCallbackPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			config.CallbackPort = port
		} else {
			logging.Warn("ConfigLoader", "Ignoring invalid %s value %q", EnvCallbackPort, v)
		}
	}
	return config
}
