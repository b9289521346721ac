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

// Package shamir implements Shamir's threshold secret sharing over a prime
// field.
//
// A secret s is hidden as the constant term of a random polynomial of
// degree T-1 modulo a prime p > s. Fragment i is the point (i, f(i) mod p).
// Any T fragments determine the polynomial and therefore s; fewer leave s
// uniformly distributed over the field.
//
// # Restoring
//
// Two independent algorithms are provided and always agree on valid input:
//
//   - Restore solves the Vandermonde system by Gaussian elimination modulo p
//     and reports rank deficiency or contradictions as typed errors
//   - Interpolate evaluates the Lagrange form of the polynomial at x = 0 and
//     performs only structural validation
//
// # Usage
//
//	fragments, modulus, err := shamir.Share(big.NewInt(42), 5, 3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	secret, err := shamir.Restore(fragments[:3], modulus)
//
// The field modulus is public and must travel with the fragments; see
// Seal and Open for the envelope form.
package shamir

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/rand"
	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-secretshare/pkg/logging"
	"github.com/jeremyhahn/go-secretshare/pkg/metrics"
	"github.com/jeremyhahn/go-secretshare/pkg/prime"
)

// Fragment is one point of the sharing polynomial.
type Fragment struct {
	// X is the public evaluation point, 1..count for fragments from Share
	X int

	// Y is the polynomial value at X modulo the field prime
	Y *big.Int
}

// String returns a short representation of the fragment
func (f Fragment) String() string {
	return fmt.Sprintf("(%d, %s)", f.X, f.Y)
}

// Config configures an Engine. Every field is optional.
type Config struct {
	// Rand supplies polynomial coefficients and the modulus choice.
	// Defaults to a crypto/rand resolver.
	Rand rand.Resolver

	// Primes finds field moduli outside the small-prime cache.
	// Defaults to prime.Default().
	Primes prime.Oracle

	// Cache is the table random moduli are drawn from.
	// Defaults to prime.SmallPrimes().
	Cache *prime.Cache

	// Logger receives debug output. Defaults to a warn-level stderr logger.
	Logger *logging.Logger
}

// Engine splits and restores integer secrets. An Engine holds no state
// between calls and is safe for concurrent use when its Rand is.
type Engine struct {
	rng    rand.Resolver
	primes prime.Oracle
	cache  *prime.Cache
	log    *logging.Logger
}

// New creates an Engine from config. A nil config selects every default.
func New(config *Config) (*Engine, error) {
	if config == nil {
		config = &Config{}
	}
	e := &Engine{
		rng:    config.Rand,
		primes: config.Primes,
		cache:  config.Cache,
		log:    config.Logger,
	}
	if e.rng == nil {
		rng, err := rand.NewResolver(rand.ModeSoftware)
		if err != nil {
			return nil, fmt.Errorf("shamir: failed to create random source: %w", err)
		}
		e.rng = rng
	}
	if e.primes == nil {
		e.primes = prime.Default()
	}
	if e.cache == nil {
		e.cache = prime.SmallPrimes()
	}
	if e.log == nil {
		e.log = logging.Quiet()
	}
	e.log = e.log.With("scheme", metrics.SchemeShamir)
	return e, nil
}

// Share splits secret into count fragments, any threshold of which restore
// it. It returns the fragments with X = 1..count and the field modulus.
//
// The modulus is a prime strictly greater than both the secret and count.
// When that bound falls inside the small-prime cache the prime is drawn at
// random from the cached primes above it, otherwise it is the next prime
// above the bound.
func (e *Engine) Share(secret *big.Int, count, threshold int) (fragments []Fragment, modulus *big.Int, err error) {
	start := time.Now()
	defer func() {
		observe(metrics.OpShare, start, err)
		if err == nil {
			metrics.RecordFragments(metrics.SchemeShamir, len(fragments))
		}
	}()

	if secret == nil || secret.Sign() < 0 {
		return nil, nil, fmt.Errorf("%w: secret must be a non-negative integer", secretsharing.ErrInvalidSecret)
	}
	if count < 1 {
		return nil, nil, fmt.Errorf("%w: count %d", secretsharing.ErrInvalidCount, count)
	}
	if threshold < 1 || threshold > count {
		return nil, nil, fmt.Errorf("%w: threshold %d with count %d",
			secretsharing.ErrThresholdOutOfRange, threshold, count)
	}

	modulus, err = e.chooseModulus(secret, count)
	if err != nil {
		return nil, nil, err
	}
	poly, err := randomPolynomial(secret, threshold, modulus, e.rng)
	if err != nil {
		return nil, nil, err
	}

	fragments = make([]Fragment, count)
	for i := range fragments {
		x := i + 1
		fragments[i] = Fragment{X: x, Y: poly.Evaluate(big.NewInt(int64(x)), modulus)}
	}

	e.log.Debug("split secret",
		"count", count,
		"threshold", threshold,
		"modulus_bits", modulus.BitLen())
	return fragments, modulus, nil
}

// chooseModulus picks a prime above max(secret, count).
func (e *Engine) chooseModulus(secret *big.Int, count int) (*big.Int, error) {
	bound := new(big.Int).Set(secret)
	if c := big.NewInt(int64(count)); c.Cmp(bound) > 0 {
		bound = c
	}
	p, ok, err := e.cache.RandomAbove(bound, e.rng)
	if err != nil {
		return nil, fmt.Errorf("shamir: failed to choose modulus: %w", err)
	}
	if ok {
		return p, nil
	}
	return e.primes.NextPrimeAbove(bound), nil
}

func observe(operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		metrics.RecordError(operation, metrics.SchemeShamir, secretsharing.Kind(err))
	}
	metrics.RecordOperation(operation, metrics.SchemeShamir, status, time.Since(start).Seconds())
}

// validate performs the structural checks shared by both restore paths.
func validate(fragments []Fragment, modulus *big.Int) error {
	if len(fragments) == 0 {
		return fmt.Errorf("%w: no fragments", secretsharing.ErrInsufficientFragments)
	}
	if modulus == nil || modulus.Cmp(big.NewInt(2)) < 0 {
		return fmt.Errorf("%w: modulus must be at least 2", secretsharing.ErrInvalidModulus)
	}
	for i, f := range fragments {
		if f.X < 1 || f.Y == nil {
			return fmt.Errorf("%w: fragment %d is %v", secretsharing.ErrInvalidFragment, i, f)
		}
	}
	return nil
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
	defaultErr    error
)

func engine() (*Engine, error) {
	defaultOnce.Do(func() {
		defaultEngine, defaultErr = New(nil)
	})
	return defaultEngine, defaultErr
}

// Share splits secret using a default engine backed by crypto/rand.
func Share(secret *big.Int, count, threshold int) ([]Fragment, *big.Int, error) {
	e, err := engine()
	if err != nil {
		return nil, nil, err
	}
	return e.Share(secret, count, threshold)
}

// Restore recovers the secret by Gaussian elimination using a default engine.
func Restore(fragments []Fragment, modulus *big.Int) (*big.Int, error) {
	e, err := engine()
	if err != nil {
		return nil, err
	}
	return e.Restore(fragments, modulus)
}

// Interpolate recovers the secret by Lagrange interpolation using a default
// engine.
func Interpolate(fragments []Fragment, modulus *big.Int) (*big.Int, error) {
	e, err := engine()
	if err != nil {
		return nil, err
	}
	return e.Interpolate(fragments, modulus)
}
