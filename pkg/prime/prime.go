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

// Package prime supplies the primality oracle used by the secret sharing
// engines: a probabilistic primality test, an upward search for the next
// prime above a bound, and a process-wide cache of small primes.
//
// # Small-prime cache
//
// All primes in [2, CacheLimit] are sieved once, on first use, and kept in a
// read-only table shared by every caller. Bounds inside that range are
// answered from the table; larger bounds fall back to testing odd
// candidates with big.Int.ProbablyPrime.
//
// # Primality
//
// IsPrime uses ProbablyPrime with 20 Miller-Rabin rounds plus the
// Baillie-PSW test, which is exact for inputs below 2^64 and has negligible
// error above it.
package prime

import (
	"math/big"
)

const (
	// millerRabinRounds is the number of random bases passed to ProbablyPrime.
	millerRabinRounds = 20
)

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// Oracle answers primality questions for the engines. Implementations must
// be safe for concurrent use.
type Oracle interface {
	// IsPrime reports whether n is prime.
	IsPrime(n *big.Int) bool

	// NextPrimeAbove returns the smallest prime strictly greater than n.
	NextPrimeAbove(n *big.Int) *big.Int
}

// cachedOracle answers from the small-prime cache when it can and falls back
// to probabilistic testing otherwise.
type cachedOracle struct {
	cache *Cache
}

var _ Oracle = (*cachedOracle)(nil)

// Default returns the oracle backed by the process-wide small-prime cache.
func Default() Oracle {
	return &cachedOracle{cache: SmallPrimes()}
}

func (o *cachedOracle) IsPrime(n *big.Int) bool {
	if n == nil || n.Sign() <= 0 {
		return false
	}
	if o.cache.InRange(n) {
		return o.cache.Contains(n)
	}
	return n.ProbablyPrime(millerRabinRounds)
}

func (o *cachedOracle) NextPrimeAbove(n *big.Int) *big.Int {
	if p, ok := o.cache.NextAbove(n); ok {
		return p
	}
	return searchAbove(n, o.IsPrime)
}

// IsPrime reports whether n is prime using the default oracle.
func IsPrime(n *big.Int) bool {
	return Default().IsPrime(n)
}

// NextPrimeAbove returns the smallest prime strictly greater than n using
// the default oracle. Any n below 2 yields 2.
func NextPrimeAbove(n *big.Int) *big.Int {
	return Default().NextPrimeAbove(n)
}

// searchAbove walks the odd integers above n until isPrime accepts one.
func searchAbove(n *big.Int, isPrime func(*big.Int) bool) *big.Int {
	if n == nil || n.Cmp(bigTwo) < 0 {
		return big.NewInt(2)
	}
	candidate := new(big.Int).Add(n, bigOne)
	if candidate.Bit(0) == 0 {
		candidate.Add(candidate, bigOne)
	}
	for !isPrime(candidate) {
		candidate.Add(candidate, bigTwo)
	}
	return candidate
}
