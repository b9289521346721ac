// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-secretshare.
//
// go-secretshare is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/rand"
	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing/asmuthbloom"
	"github.com/jeremyhahn/go-secretshare/pkg/logging"
)

// Config represents the complete sharectl configuration
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	RNG         RNGConfig         `yaml:"rng"`
	Shamir      ThresholdConfig   `yaml:"shamir"`
	AsmuthBloom AsmuthBloomConfig `yaml:"asmuth_bloom"`
	SSSA        ThresholdConfig   `yaml:"sssa"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls metrics collection
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RNGConfig selects the random source handed to the engines
type RNGConfig struct {
	Mode string `yaml:"mode"` // auto, software, seeded
	Seed uint64 `yaml:"seed"` // only used in seeded mode
}

// ThresholdConfig holds default split parameters for a scheme
type ThresholdConfig struct {
	Count     int `yaml:"count"`
	Threshold int `yaml:"threshold"`
}

// AsmuthBloomConfig holds default Asmuth-Bloom split parameters
type AsmuthBloomConfig struct {
	Count       int `yaml:"count"`
	Limit       int `yaml:"limit"`
	MaxAttempts int `yaml:"max_attempts"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		RNG: RNGConfig{
			Mode: string(rand.ModeSoftware),
		},
		Shamir: ThresholdConfig{
			Count:     5,
			Threshold: 3,
		},
		AsmuthBloom: AsmuthBloomConfig{
			Count:       4,
			Limit:       2,
			MaxAttempts: asmuthbloom.MaxAttempts,
		},
		SSSA: ThresholdConfig{
			Count:     5,
			Threshold: 3,
		},
	}
}

// Load reads the YAML file at path on top of the defaults, applies
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 - Config file path is provided by the user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Logging
	if level := os.Getenv("SECRETSHARE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("SECRETSHARE_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	// Randomness
	if mode := os.Getenv("SECRETSHARE_RNG_MODE"); mode != "" {
		cfg.RNG.Mode = mode
	}
	if seed := os.Getenv("SECRETSHARE_RNG_SEED"); seed != "" {
		v, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			log.Printf("Warning: invalid SECRETSHARE_RNG_SEED value %q, using %d: %v",
				seed, cfg.RNG.Seed, err)
		} else {
			cfg.RNG.Seed = v
		}
	}

	// Asmuth-Bloom
	if attempts := os.Getenv("SECRETSHARE_MAX_ATTEMPTS"); attempts != "" {
		v, err := strconv.Atoi(attempts)
		if err != nil {
			log.Printf("Warning: invalid SECRETSHARE_MAX_ATTEMPTS value %q, using %d: %v",
				attempts, cfg.AsmuthBloom.MaxAttempts, err)
		} else if v < 1 {
			log.Printf("Warning: invalid SECRETSHARE_MAX_ATTEMPTS value %q (must be positive), using %d",
				attempts, cfg.AsmuthBloom.MaxAttempts)
		} else {
			cfg.AsmuthBloom.MaxAttempts = v
		}
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	switch logging.Format(strings.ToLower(c.Logging.Format)) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	switch rand.Mode(c.RNG.Mode) {
	case rand.ModeAuto, rand.ModeSoftware, rand.ModeSeeded:
	default:
		return fmt.Errorf("invalid rng mode: %s (must be auto, software, or seeded)", c.RNG.Mode)
	}

	if err := checkThreshold("shamir", c.Shamir.Count, c.Shamir.Threshold, 1); err != nil {
		return err
	}
	if err := checkThreshold("asmuth_bloom", c.AsmuthBloom.Count, c.AsmuthBloom.Limit, 1); err != nil {
		return err
	}
	if c.AsmuthBloom.MaxAttempts < 1 {
		return fmt.Errorf("asmuth_bloom max_attempts must be positive, got %d", c.AsmuthBloom.MaxAttempts)
	}
	if err := checkThreshold("sssa", c.SSSA.Count, c.SSSA.Threshold, 2); err != nil {
		return err
	}
	return nil
}

func checkThreshold(scheme string, count, threshold, minThreshold int) error {
	if count < 1 {
		return fmt.Errorf("%s count must be positive, got %d", scheme, count)
	}
	if threshold < minThreshold || threshold > count {
		return fmt.Errorf("%s threshold %d must be in [%d, %d]", scheme, threshold, minThreshold, count)
	}
	return nil
}

// NewLogger builds the logger described by the logging section. verbose
// forces debug level.
func (c *Config) NewLogger(w io.Writer, verbose bool) (*logging.Logger, error) {
	level := c.Logging.Level
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: logging.Format(strings.ToLower(c.Logging.Format)),
		Writer: w,
	})
}

// NewResolver builds the random source described by the rng section.
func (c *Config) NewResolver() (rand.Resolver, error) {
	return rand.NewResolver(&rand.Config{
		Mode: rand.Mode(c.RNG.Mode),
		Seed: c.RNG.Seed,
	})
}
