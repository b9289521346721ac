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
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-secretshare/pkg/metrics"
	"github.com/jeremyhahn/go-secretshare/pkg/modular"
)

// Interpolate recovers the secret by evaluating the Lagrange form of the
// polynomial at zero:
//
//	s = sum_i y_i * prod_{j != i} x_j / (x_j - x_i)  (mod p)
//
// Only the fragment list and modulus are validated. Fragments are expected
// to have distinct X; terms where x_j ≡ x_i are skipped, and too few
// fragments silently produce a value unrelated to the secret.
func (e *Engine) Interpolate(fragments []Fragment, modulus *big.Int) (secret *big.Int, err error) {
	start := time.Now()
	defer func() { observe(metrics.OpInterpolate, start, err) }()

	if err := validate(fragments, modulus); err != nil {
		return nil, err
	}

	xs := make([]*big.Int, len(fragments))
	for i, f := range fragments {
		xs[i] = modular.Reduce(big.NewInt(int64(f.X)), modulus)
	}

	sum := new(big.Int)
	for i, f := range fragments {
		num := big.NewInt(1)
		den := big.NewInt(1)
		for j := range fragments {
			if modular.Congruent(xs[j], xs[i], modulus) {
				continue
			}
			num.Mul(num, xs[j])
			num.Mod(num, modulus)
			den.Mul(den, new(big.Int).Sub(xs[j], xs[i]))
			den.Mod(den, modulus)
		}
		inv, err := modular.Inverse(den, modulus)
		if err != nil {
			if errors.Is(err, modular.ErrNotInvertible) {
				return nil, fmt.Errorf("%w: %w", secretsharing.ErrNonInvertibleResidue, err)
			}
			return nil, err
		}
		term := num.Mul(num, inv)
		term.Mul(term, f.Y)
		sum.Add(sum, term)
		sum.Mod(sum, modulus)
	}

	e.log.Debug("restored secret by interpolation", "fragments", len(fragments))
	return sum, nil
}
