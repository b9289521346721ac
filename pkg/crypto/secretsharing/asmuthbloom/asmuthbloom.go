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

// Package asmuthbloom implements the Asmuth-Bloom threshold scheme, which
// shares a secret through residues modulo a set of primes and restores it
// with the Chinese Remainder Theorem.
//
// # Parameters
//
// For a secret s the engine picks a public prime p > s and count strictly
// increasing primes d_1 < ... < d_count, all above p, such that
//
//	d_1 * ... * d_limit > p * d_(count-limit+2) * ... * d_count
//
// that is, the product of the limit smallest moduli exceeds p times the
// product of the limit-1 largest. The secret is blinded as M = s + r*p with
// r chosen so that M stays below the product of the limit smallest moduli.
// Fragment i is (M mod d_i, d_i, p).
//
// Any limit fragments determine M by CRT and s = M mod p. Fewer fragments
// leave M ambiguous across every residue class modulo p.
//
// # Modulus search
//
// Candidate sets are consecutive primes starting above p*2^(a+1) for
// attempt a. The search is bounded; exhausting it returns
// secretsharing.ErrInequalityUnsatisfiable.
package asmuthbloom

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/rand"
	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-secretshare/pkg/logging"
	"github.com/jeremyhahn/go-secretshare/pkg/metrics"
	"github.com/jeremyhahn/go-secretshare/pkg/modular"
	"github.com/jeremyhahn/go-secretshare/pkg/prime"
)

// MaxAttempts is the default bound on candidate modulus sets tried per split.
const MaxAttempts = 64

// Fragment is one residue of the blinded secret.
type Fragment struct {
	// Residue is the blinded secret modulo Modulus
	Residue *big.Int

	// Modulus is the fragment's prime d_i
	Modulus *big.Int

	// PublicPrime is p, shared by every fragment of a split
	PublicPrime *big.Int
}

// String returns a short representation of the fragment
func (f Fragment) String() string {
	return fmt.Sprintf("(%s mod %s, p=%s)", f.Residue, f.Modulus, f.PublicPrime)
}

// Config configures an Engine. Every field is optional.
type Config struct {
	// Rand draws the blinding multiplier. Defaults to a crypto/rand resolver.
	Rand rand.Resolver

	// Primes finds the public prime and the moduli. Defaults to prime.Default().
	Primes prime.Oracle

	// MaxAttempts bounds the modulus search. Defaults to MaxAttempts.
	MaxAttempts int

	// Logger receives debug output. Defaults to a warn-level stderr logger.
	Logger *logging.Logger
}

// Engine splits and restores integer secrets. An Engine holds no state
// between calls and is safe for concurrent use when its Rand is.
type Engine struct {
	rng         rand.Resolver
	primes      prime.Oracle
	maxAttempts int
	log         *logging.Logger
}

// New creates an Engine from config. A nil config selects every default.
func New(config *Config) (*Engine, error) {
	if config == nil {
		config = &Config{}
	}
	if config.MaxAttempts < 0 {
		return nil, fmt.Errorf("asmuthbloom: max attempts must not be negative, got %d", config.MaxAttempts)
	}
	e := &Engine{
		rng:         config.Rand,
		primes:      config.Primes,
		maxAttempts: config.MaxAttempts,
		log:         config.Logger,
	}
	if e.rng == nil {
		rng, err := rand.NewResolver(rand.ModeSoftware)
		if err != nil {
			return nil, fmt.Errorf("asmuthbloom: failed to create random source: %w", err)
		}
		e.rng = rng
	}
	if e.primes == nil {
		e.primes = prime.Default()
	}
	if e.maxAttempts == 0 {
		e.maxAttempts = MaxAttempts
	}
	if e.log == nil {
		e.log = logging.Quiet()
	}
	e.log = e.log.With("scheme", metrics.SchemeAsmuthBloom)
	return e, nil
}

// Share splits secret into count fragments, any limit of which restore it.
func (e *Engine) Share(secret *big.Int, count, limit int) (fragments []Fragment, err error) {
	start := time.Now()
	defer func() {
		observe(metrics.OpShare, start, err)
		if err == nil {
			metrics.RecordFragments(metrics.SchemeAsmuthBloom, len(fragments))
		}
	}()

	if secret == nil || secret.Sign() < 0 {
		return nil, fmt.Errorf("%w: secret must be a non-negative integer", secretsharing.ErrInvalidSecret)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: count %d", secretsharing.ErrInvalidCount, count)
	}
	if limit < 1 || limit > count {
		return nil, fmt.Errorf("%w: limit %d with count %d",
			secretsharing.ErrThresholdOutOfRange, limit, count)
	}

	p := e.primes.NextPrimeAbove(secret)
	moduli, err := e.searchModuli(p, count, limit)
	if err != nil {
		return nil, err
	}

	blinded, err := e.blind(secret, p, product(moduli[:limit]))
	if err != nil {
		return nil, err
	}

	fragments = make([]Fragment, count)
	for i, d := range moduli {
		fragments[i] = Fragment{
			Residue:     modular.Reduce(blinded, d),
			Modulus:     d,
			PublicPrime: new(big.Int).Set(p),
		}
	}

	e.log.Debug("split secret",
		"count", count,
		"limit", limit,
		"public_prime_bits", p.BitLen(),
		"modulus_bits", moduli[count-1].BitLen())
	return fragments, nil
}

// searchModuli finds count consecutive primes satisfying the Asmuth-Bloom
// inequality for p and limit.
func (e *Engine) searchModuli(p *big.Int, count, limit int) ([]*big.Int, error) {
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		start := new(big.Int).Lsh(p, uint(attempt+1))
		moduli := make([]*big.Int, count)
		prev := start
		for i := range moduli {
			moduli[i] = e.primes.NextPrimeAbove(prev)
			prev = moduli[i]
		}
		if satisfies(moduli, p, limit) {
			metrics.RecordModulusSearch(attempt + 1)
			return moduli, nil
		}
		e.log.Debug("modulus set rejected", "attempt", attempt+1, "start_bits", start.BitLen())
	}
	metrics.RecordModulusSearch(e.maxAttempts)
	return nil, fmt.Errorf("%w: no modulus set for count %d and limit %d after %d attempts",
		secretsharing.ErrInequalityUnsatisfiable, count, limit, e.maxAttempts)
}

// satisfies reports whether the product of the limit smallest moduli
// exceeds p times the product of the limit-1 largest. moduli is ascending.
func satisfies(moduli []*big.Int, p *big.Int, limit int) bool {
	smallest := product(moduli[:limit])
	largest := product(moduli[len(moduli)-(limit-1):])
	largest.Mul(largest, p)
	return smallest.Cmp(largest) > 0
}

// blind returns secret + r*p with r uniform in [0, floor((dmin-1-secret)/p)].
func (e *Engine) blind(secret, p, dmin *big.Int) (*big.Int, error) {
	bound := new(big.Int).Sub(dmin, big.NewInt(1))
	bound.Sub(bound, secret)
	bound.Quo(bound, p)
	r, err := e.rng.Range(new(big.Int), bound)
	if err != nil {
		return nil, fmt.Errorf("asmuthbloom: failed to draw blinding factor: %w", err)
	}
	r.Mul(r, p)
	return r.Add(r, secret), nil
}

// Restore recovers the secret from at least limit fragments of one split.
//
// Every (residue, modulus) pair takes part in the CRT solve; repeated or
// non-coprime moduli are accepted as long as the residues agree.
func (e *Engine) Restore(fragments []Fragment, limit int) (secret *big.Int, err error) {
	start := time.Now()
	defer func() { observe(metrics.OpRestore, start, err) }()

	if limit < 1 {
		return nil, fmt.Errorf("%w: limit %d", secretsharing.ErrThresholdOutOfRange, limit)
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: no fragments", secretsharing.ErrInsufficientFragments)
	}

	p := fragments[0].PublicPrime
	congruences := make([]modular.Congruence, len(fragments))
	distinct := make(map[string]struct{}, len(fragments))
	for i, f := range fragments {
		if err := checkFragment(f); err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i, err)
		}
		if f.PublicPrime.Cmp(p) != 0 {
			return nil, fmt.Errorf("%w: fragment %d has public prime %s, expected %s",
				secretsharing.ErrMismatchedFragments, i, f.PublicPrime, p)
		}
		distinct[f.Modulus.String()] = struct{}{}
		congruences[i] = modular.Congruence{Residue: f.Residue, Modulus: f.Modulus}
	}
	if len(distinct) < limit {
		return nil, fmt.Errorf("%w: need %d distinct moduli, got %d",
			secretsharing.ErrInsufficientFragments, limit, len(distinct))
	}

	solved, err := modular.SolveCRT(congruences)
	if err != nil {
		if errors.Is(err, modular.ErrInconsistentCongruences) {
			return nil, fmt.Errorf("%w: %w", secretsharing.ErrInconsistentSystem, err)
		}
		return nil, err
	}

	e.log.Debug("restored secret", "fragments", len(fragments), "limit", limit)
	return modular.Reduce(solved.Residue, p), nil
}

func checkFragment(f Fragment) error {
	two := big.NewInt(2)
	if f.PublicPrime == nil || f.PublicPrime.Cmp(two) < 0 {
		return fmt.Errorf("%w: missing public prime", secretsharing.ErrInvalidFragment)
	}
	if f.Modulus == nil || f.Modulus.Cmp(two) < 0 {
		return fmt.Errorf("%w: missing modulus", secretsharing.ErrInvalidFragment)
	}
	if f.Residue == nil || f.Residue.Sign() < 0 || f.Residue.Cmp(f.Modulus) >= 0 {
		return fmt.Errorf("%w: residue outside [0, %s)", secretsharing.ErrInvalidFragment, f.Modulus)
	}
	return nil
}

func product(values []*big.Int) *big.Int {
	acc := big.NewInt(1)
	for _, v := range values {
		acc.Mul(acc, v)
	}
	return acc
}

func observe(operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		metrics.RecordError(operation, metrics.SchemeAsmuthBloom, secretsharing.Kind(err))
	}
	metrics.RecordOperation(operation, metrics.SchemeAsmuthBloom, status, time.Since(start).Seconds())
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
func Share(secret *big.Int, count, limit int) ([]Fragment, error) {
	e, err := engine()
	if err != nil {
		return nil, err
	}
	return e.Share(secret, count, limit)
}

// Restore recovers the secret using a default engine.
func Restore(fragments []Fragment, limit int) (*big.Int, error) {
	e, err := engine()
	if err != nil {
		return nil, err
	}
	return e.Restore(fragments, limit)
}
