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

// Package modular provides the modular arithmetic primitives consumed by
// the secret sharing engines: reduction into [0, m), multiplicative
// inverses, least common multiples and Chinese Remainder Theorem solving.
//
// Every function allocates its result; arguments are never modified.
package modular

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrInvalidModulus is returned when a modulus is nil or not positive.
	ErrInvalidModulus = errors.New("modular: modulus must be positive")

	// ErrNotInvertible is returned when a value shares a factor with the modulus.
	ErrNotInvertible = errors.New("modular: value is not invertible")

	// ErrInconsistentCongruences is returned when a system of congruences has no solution.
	ErrInconsistentCongruences = errors.New("modular: congruences are inconsistent")

	// ErrEmptySystem is returned when SolveCRT receives no congruences.
	ErrEmptySystem = errors.New("modular: no congruences to solve")
)

var bigOne = big.NewInt(1)

// Reduce returns a mod m in [0, m). The modulus must be positive.
func Reduce(a, m *big.Int) *big.Int {
	return new(big.Int).Mod(a, m)
}

// Congruent reports whether m divides (a - b).
func Congruent(a, b, m *big.Int) bool {
	return Reduce(a, m).Cmp(Reduce(b, m)) == 0
}

// Inverse returns x in [0, m) such that a*x ≡ 1 (mod m).
func Inverse(a, m *big.Int) (*big.Int, error) {
	if m == nil || m.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}
	if m.Cmp(bigOne) == 0 {
		return new(big.Int), nil
	}
	r := Reduce(a, m)
	if new(big.Int).GCD(nil, nil, r, m).Cmp(bigOne) != 0 {
		return nil, fmt.Errorf("%w: gcd(%s, %s) != 1", ErrNotInvertible, r, m)
	}
	return new(big.Int).ModInverse(r, m), nil
}

// LCM returns the least common multiple of |a| and |b|. It returns zero
// when either argument is zero.
func LCM(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return new(big.Int)
	}
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)
	g := new(big.Int).GCD(nil, nil, x, y)
	return x.Mul(x.Quo(x, g), y)
}
