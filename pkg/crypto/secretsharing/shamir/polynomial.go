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

package shamir

import (
	"fmt"
	"math/big"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/rand"
)

// Polynomial holds coefficients ordered from the highest degree down. The
// last coefficient is the constant term, which is the shared secret.
type Polynomial []*big.Int

// Degree returns the polynomial degree.
func (p Polynomial) Degree() int {
	return len(p) - 1
}

// Secret returns the constant term.
func (p Polynomial) Secret() *big.Int {
	return p[len(p)-1]
}

// Evaluate returns p(x) mod modulus using Horner's rule.
func (p Polynomial) Evaluate(x, modulus *big.Int) *big.Int {
	acc := new(big.Int)
	for _, c := range p {
		acc.Mul(acc, x)
		acc.Add(acc, c)
		acc.Mod(acc, modulus)
	}
	return acc
}

// randomPolynomial builds a degree threshold-1 polynomial whose constant
// term is secret and whose other coefficients are uniform in [1, modulus-1].
func randomPolynomial(secret *big.Int, threshold int, modulus *big.Int, rng rand.Resolver) (Polynomial, error) {
	high := new(big.Int).Sub(modulus, big.NewInt(1))
	poly := make(Polynomial, threshold)
	for i := 0; i < threshold-1; i++ {
		c, err := rng.Range(big.NewInt(1), high)
		if err != nil {
			return nil, fmt.Errorf("shamir: failed to generate coefficient: %w", err)
		}
		poly[i] = c
	}
	poly[threshold-1] = new(big.Int).Set(secret)
	return poly, nil
}
