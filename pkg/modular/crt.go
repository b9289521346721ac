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

package modular

import (
	"fmt"
	"math/big"
)

// Congruence is the statement x ≡ Residue (mod Modulus).
type Congruence struct {
	Residue *big.Int
	Modulus *big.Int
}

// String renders the congruence in the usual notation.
func (c Congruence) String() string {
	return fmt.Sprintf("x ≡ %s (mod %s)", c.Residue, c.Modulus)
}

// SolveCRT combines the congruences into a single one whose modulus is the
// least common multiple of all moduli. Moduli need not be pairwise coprime:
// congruences that agree on their shared factors are merged, and
// contradicting ones yield ErrInconsistentCongruences.
//
// The returned residue lies in [0, combined modulus).
func SolveCRT(congruences []Congruence) (Congruence, error) {
	if len(congruences) == 0 {
		return Congruence{}, ErrEmptySystem
	}

	var acc Congruence
	for i, c := range congruences {
		if c.Modulus == nil || c.Modulus.Sign() <= 0 || c.Residue == nil {
			return Congruence{}, fmt.Errorf("%w: congruence %d", ErrInvalidModulus, i)
		}
		if i == 0 {
			acc = Congruence{
				Residue: Reduce(c.Residue, c.Modulus),
				Modulus: new(big.Int).Set(c.Modulus),
			}
			continue
		}
		merged, err := combine(acc, c)
		if err != nil {
			return Congruence{}, fmt.Errorf("congruence %d: %w", i, err)
		}
		acc = merged
	}
	return acc, nil
}

// combine merges x ≡ a1 (mod m1) and x ≡ a2 (mod m2).
//
// With g = gcd(m1, m2) a solution exists iff g | (a2 - a1). It is then
// x = a1 + m1 * k where k = ((a2 - a1) / g) * (m1 / g)^-1 mod (m2 / g).
func combine(a, b Congruence) (Congruence, error) {
	m1, m2 := a.Modulus, b.Modulus
	a1 := a.Residue
	a2 := Reduce(b.Residue, m2)

	g := new(big.Int).GCD(nil, nil, m1, m2)
	diff := new(big.Int).Sub(a2, a1)
	quo, rem := new(big.Int).QuoRem(diff, g, new(big.Int))
	if rem.Sign() != 0 {
		return Congruence{}, fmt.Errorf("%w: %s and %s", ErrInconsistentCongruences, a, b)
	}

	m2g := new(big.Int).Quo(m2, g)
	inv, err := Inverse(new(big.Int).Quo(m1, g), m2g)
	if err != nil {
		return Congruence{}, err
	}

	k := quo.Mul(quo, inv)
	k.Mod(k, m2g)

	lcm := new(big.Int).Mul(m1, m2g)
	x := new(big.Int).Mul(m1, k)
	x.Add(x, a1)
	x.Mod(x, lcm)

	return Congruence{Residue: x, Modulus: lcm}, nil
}
