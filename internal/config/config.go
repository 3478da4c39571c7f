// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

// Package config loads and validates embedstore configuration from file,
// environment, and defaults.
package config

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	esterr "github.com/embedstore-dev/embedstore/pkg/errors"
)

// Config is the top-level embedstore configuration.
type Config struct {
	Server    ServerConfig              `mapstructure:"server" yaml:"server"`
	Storage   StorageConfig             `mapstructure:"storage" yaml:"storage"`
	Providers map[string]ProviderConfig `mapstructure:"providers" yaml:"providers,omitempty"`
}

// ServerConfig controls how embedstore listens for connections.
type ServerConfig struct {
	Listen                string   `mapstructure:"listen" yaml:"listen"`
	CORSOrigins           []string `mapstructure:"cors_origins" yaml:"cors_origins,omitempty"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds" yaml:"request_timeout_seconds"`
}

// StorageConfig selects the storage backend and database location.
type StorageConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path,omitempty"`
}

// ProviderConfig holds credentials and endpoint for an embedding provider.
// APIKey may be a plain value or a keyring://service/key URI resolved at
// startup.
type ProviderConfig struct {
	APIKey   string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
}

// knownProviders are the embedding providers embedstore can construct.
var knownProviders = map[string]bool{
	"ollama": true,
	"openai": true,
	"gemini": true,
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix EMBEDSTORE_).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.listen", "127.0.0.1:8237")
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("storage.backend", "sqlite")

	// Environment
	v.SetEnvPrefix("EMBEDSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, esterr.Errorf(esterr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, esterr.Errorf(esterr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, esterr.Errorf(esterr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateProviders()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, esterr.Errorf(esterr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
	} else {
		host, portStr, err := net.SplitHostPort(c.Server.Listen)
		if err != nil {
			errs = append(errs, esterr.Errorf(esterr.CodeConfigValidateInvalidValue,
				"config: server.listen must be a valid host:port address, got %q: %w",
				c.Server.Listen, err,
			))
		} else {
			_ = host // host can be empty (e.g., ":8237"), which is valid
			port, err := strconv.Atoi(portStr)
			if err != nil {
				errs = append(errs, esterr.Errorf(esterr.CodeConfigValidateInvalidValue,
					"config: server.listen port must be a number, got %q",
					portStr,
				))
			} else if port < 1 || port > 65535 {
				errs = append(errs, esterr.Errorf(esterr.CodeConfigValidateInvalidValue,
					"config: server.listen port must be between 1 and 65535, got %d",
					port,
				))
			}
		}
	}

	if c.Server.RequestTimeoutSeconds < 0 {
		errs = append(errs, esterr.Errorf(esterr.CodeConfigValidateInvalidValue,
			"config: server.request_timeout_seconds must not be negative, got %d",
			c.Server.RequestTimeoutSeconds,
		))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"sqlite": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, esterr.Errorf(esterr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [sqlite], got %q",
			c.Storage.Backend,
		))
	}

	return errs
}

func (c *Config) validateProviders() []error {
	var errs []error

	for name := range c.Providers {
		if !knownProviders[name] {
			errs = append(errs, esterr.Errorf(esterr.CodeConfigValidateInvalidValue,
				"config: providers.%s is not a known provider (one of [gemini, ollama, openai])",
				name,
			))
		}
	}

	return errs
}

// YAML renders the effective configuration as YAML, for `embedstore config
// show`. API keys are redacted so the output is safe to paste into bug
// reports.
func (c *Config) YAML() ([]byte, error) {
	redacted := *c
	if len(c.Providers) > 0 {
		redacted.Providers = make(map[string]ProviderConfig, len(c.Providers))
		for name, p := range c.Providers {
			if p.APIKey != "" {
				p.APIKey = "<redacted>"
			}
			redacted.Providers[name] = p
		}
	}

	out, err := yaml.Marshal(&redacted)
	if err != nil {
		return nil, esterr.Errorf(esterr.CodeConfigValidateInvalidValue, "rendering config: %w", err)
	}
	return out, nil
}
