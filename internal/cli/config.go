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

package cli

import (
	"fmt"
	"io"

	"github.com/jeremyhahn/go-secretshare/internal/config"
	"github.com/jeremyhahn/go-secretshare/pkg/crypto/rand"
	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing/asmuthbloom"
	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing/shamir"
	"github.com/jeremyhahn/go-secretshare/pkg/logging"
	"github.com/jeremyhahn/go-secretshare/pkg/metrics"
)

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to the YAML settings file
	ConfigFile string

	// OutputFormat controls output formatting (json, text, table)
	OutputFormat string

	// Verbose enables debug logging
	Verbose bool

	// RNGMode overrides the settings file rng mode when non-empty
	RNGMode string

	// Seed overrides the settings file seed when SeedSet is true
	Seed    uint64
	SeedSet bool

	// Metrics dumps the collected metrics to stderr after the command
	Metrics bool

	// Settings is the loaded settings file with overrides applied
	Settings *config.Config

	logger *logging.Logger
	rng    rand.Resolver
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		OutputFormat: "text",
	}
}

// Resolve loads the settings, applies flag overrides and builds the logger
// and random source shared by every engine of the command.
func (c *Config) Resolve(stderr io.Writer) error {
	settings, err := config.Load(c.ConfigFile)
	if err != nil {
		return err
	}
	if c.RNGMode != "" {
		settings.RNG.Mode = c.RNGMode
	}
	if c.SeedSet {
		settings.RNG.Seed = c.Seed
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger, err := settings.NewLogger(stderr, c.Verbose)
	if err != nil {
		return err
	}
	rng, err := settings.NewResolver()
	if err != nil {
		return err
	}
	if !rng.Available() {
		return fmt.Errorf("random source %q is not available", settings.RNG.Mode)
	}
	logger.Info("settings loaded",
		"config", c.ConfigFile,
		"rng", settings.RNG.Mode,
		"output", c.OutputFormat)
	if rand.Mode(settings.RNG.Mode) == rand.ModeSeeded {
		logger.Warn("seeded random source in use, fragments are reproducible", "seed", settings.RNG.Seed)
	}

	if settings.Metrics.Enabled || c.Metrics {
		metrics.Enable()
	} else {
		metrics.Disable()
	}

	c.Settings = settings
	c.logger = logger
	c.rng = rng
	return nil
}

// Close releases the random source.
func (c *Config) Close() error {
	if c.rng == nil {
		return nil
	}
	return c.rng.Close()
}

// ShamirEngine creates a Shamir engine from the resolved settings.
func (c *Config) ShamirEngine() (*shamir.Engine, error) {
	return shamir.New(&shamir.Config{
		Rand:   c.rng,
		Logger: c.logger,
	})
}

// AsmuthBloomEngine creates an Asmuth-Bloom engine from the resolved settings.
func (c *Config) AsmuthBloomEngine() (*asmuthbloom.Engine, error) {
	return asmuthbloom.New(&asmuthbloom.Config{
		Rand:        c.rng,
		Logger:      c.logger,
		MaxAttempts: c.Settings.AsmuthBloom.MaxAttempts,
	})
}
