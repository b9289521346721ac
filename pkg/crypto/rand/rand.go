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

// Package rand provides the configurable random source used by the secret
// sharing engines for polynomial coefficients, blinding multipliers and
// modulus selection.
//
// # Overview
//
// Engines never read from a global generator. They are handed a Resolver,
// which makes the thread-safety of the random stream an explicit property
// of the chosen mode rather than an accident of the implementation.
//
// # Modes
//
//   - Auto: resolves to the best available source (currently Software)
//   - Software: crypto/rand, safe for concurrent use
//   - Seeded: a deterministic ChaCha20 stream derived from a 64-bit seed,
//     guarded by a mutex so it can be shared across goroutines. Intended
//     for reproducible tests and benchmarks only; never use it to protect
//     real secrets.
//
// # Usage
//
//	rng, _ := rand.NewResolver(rand.ModeSoftware)
//	defer rng.Close()
//
//	// uniform integer in [1, p-1]
//	c, err := rng.Range(big.NewInt(1), new(big.Int).Sub(p, big.NewInt(1)))
//
// Resolver implements io.Reader, so it can also be passed anywhere
// crypto/rand.Reader is accepted.
package rand

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// Mode specifies which RNG source to use.
type Mode string

const (
	// ModeAuto automatically selects the best available RNG.
	ModeAuto Mode = "auto"

	// ModeSoftware uses crypto/rand (stdlib secure random)
	ModeSoftware Mode = "software"

	// ModeSeeded uses a deterministic, mutex-guarded ChaCha20 stream.
	ModeSeeded Mode = "seeded"
)

var (
	// ErrInvalidBound is returned when an integer bound is nil or empty.
	ErrInvalidBound = errors.New("rand: invalid bound")

	// ErrClosed is returned when reading from a closed resolver.
	ErrClosed = errors.New("rand: resolver closed")

	bigOne = big.NewInt(1)
)

// Config contains RNG configuration.
type Config struct {
	// Mode specifies the RNG source to use.
	// Defaults to ModeAuto if not specified.
	Mode Mode

	// Seed initialises the stream when Mode is ModeSeeded. Ignored otherwise.
	Seed uint64
}

// Resolver provides the main interface for generating random numbers.
// Applications should create a Resolver at startup and reuse it.
//
// Every Resolver returned by NewResolver is safe for concurrent use.
type Resolver interface {
	// Read implements io.Reader.
	Read(p []byte) (n int, err error)

	// Int returns a uniform integer in [0, max). max must be positive.
	Int(max *big.Int) (*big.Int, error)

	// Range returns a uniform integer in [low, high], both inclusive.
	Range(low, high *big.Int) (*big.Int, error)

	// Available returns true if the RNG source is available.
	Available() bool

	// Close closes the resolver and releases any resources.
	Close() error
}

// NewResolver creates a new RNG resolver with the given configuration.
// The config may be a Mode, a *Config or nil; nil selects auto mode.
func NewResolver(config interface{}) (Resolver, error) {
	cfg := normalizeConfig(config)
	return newResolver(cfg)
}

// normalizeConfig converts various config types to *Config.
func normalizeConfig(config interface{}) *Config {
	if config == nil {
		return &Config{Mode: ModeAuto}
	}

	switch v := config.(type) {
	case Mode:
		return &Config{Mode: v}
	case *Config:
		if v == nil {
			return &Config{Mode: ModeAuto}
		}
		if v.Mode == "" {
			v.Mode = ModeAuto
		}
		return v
	default:
		return &Config{Mode: ModeAuto}
	}
}

// newResolver creates the actual resolver implementation.
func newResolver(cfg *Config) (Resolver, error) {
	switch cfg.Mode {
	case ModeAuto, ModeSoftware:
		return newSoftwareResolver()
	case ModeSeeded:
		r, err := newSeededResolver(cfg.Seed)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown RNG mode: %s", cfg.Mode)
	}
}

// Int returns a uniform integer in [0, max) read from r.
//
// The draw consumes bytes from r only, never from the system source, so a
// seeded stream yields the same integers on every Go release.
func Int(r io.Reader, max *big.Int) (*big.Int, error) {
	if max == nil || max.Sign() <= 0 {
		return nil, fmt.Errorf("%w: max must be positive", ErrInvalidBound)
	}
	// rejection sampling over the bit length of max-1
	top := new(big.Int).Sub(max, bigOne)
	bits := top.BitLen()
	if bits == 0 {
		return new(big.Int), nil
	}
	buf := make([]byte, (bits+7)/8)
	mask := byte(0xff >> (uint(len(buf)*8 - bits)))
	n := new(big.Int)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("rand: failed to draw integer: %w", err)
		}
		buf[0] &= mask
		n.SetBytes(buf)
		if n.Cmp(max) < 0 {
			return n, nil
		}
	}
}

// Range returns a uniform integer in [low, high] read from r.
func Range(r io.Reader, low, high *big.Int) (*big.Int, error) {
	if low == nil || high == nil || high.Cmp(low) < 0 {
		return nil, fmt.Errorf("%w: empty range", ErrInvalidBound)
	}
	span := new(big.Int).Sub(high, low)
	span.Add(span, bigOne)
	n, err := Int(r, span)
	if err != nil {
		return nil, err
	}
	return n.Add(n, low), nil
}

// SoftwareResolver uses crypto/rand from the Go standard library.
type SoftwareResolver struct{}

var _ Resolver = (*SoftwareResolver)(nil)

func newSoftwareResolver() (Resolver, error) {
	return &SoftwareResolver{}, nil
}

// Read implements io.Reader for compatibility with crypto/rand.Reader.
func (s *SoftwareResolver) Read(p []byte) (n int, err error) {
	return rand.Read(p)
}

func (s *SoftwareResolver) Int(max *big.Int) (*big.Int, error) {
	return Int(rand.Reader, max)
}

func (s *SoftwareResolver) Range(low, high *big.Int) (*big.Int, error) {
	return Range(rand.Reader, low, high)
}

func (s *SoftwareResolver) Available() bool {
	return true // crypto/rand always available
}

func (s *SoftwareResolver) Close() error {
	return nil // Nothing to close
}
