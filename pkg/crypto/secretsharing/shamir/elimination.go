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

// Restore recovers the secret by solving for the polynomial coefficients
// with Gaussian elimination modulo modulus.
//
// With k fragments the system has k unknowns (a polynomial of degree k-1),
// so supplying more fragments than the threshold is allowed. Fragments
// that repeat an X with a different Y yield ErrInconsistentSystem, and a
// system that leaves the constant term undetermined yields
// ErrInsufficientFragments.
func (e *Engine) Restore(fragments []Fragment, modulus *big.Int) (secret *big.Int, err error) {
	start := time.Now()
	defer func() { observe(metrics.OpRestore, start, err) }()

	if err := validate(fragments, modulus); err != nil {
		return nil, err
	}
	sys := newSystem(fragments, modulus)
	sys.eliminate()
	secret, err = sys.constantTerm()
	if err != nil {
		return nil, err
	}
	e.log.Debug("restored secret by elimination", "fragments", len(fragments))
	return secret, nil
}

// system is the augmented k×(k+1) matrix of one restore. Row i holds
// [x_i^(k-1) ... x_i 1 | y_i] so the constant term is the last unknown.
type system struct {
	rows    [][]*big.Int
	modulus *big.Int

	// pivots[c] is the row holding the pivot of column c, or -1.
	pivots []int
}

func newSystem(fragments []Fragment, modulus *big.Int) *system {
	k := len(fragments)
	rows := make([][]*big.Int, k)
	for i, f := range fragments {
		row := make([]*big.Int, k+1)
		x := big.NewInt(int64(f.X))
		power := big.NewInt(1)
		for c := k - 1; c >= 0; c-- {
			row[c] = new(big.Int).Mod(power, modulus)
			power.Mul(power, x)
			power.Mod(power, modulus)
		}
		row[k] = modular.Reduce(f.Y, modulus)
		rows[i] = row
	}
	pivots := make([]int, k)
	for c := range pivots {
		pivots[c] = -1
	}
	return &system{rows: rows, modulus: modulus, pivots: pivots}
}

// eliminate reduces the matrix to row echelon form. Columns without a
// non-zero entry at or below the current row are skipped.
func (s *system) eliminate() {
	r := 0
	for c := 0; c < len(s.pivots) && r < len(s.rows); c++ {
		p := s.findPivot(r, c)
		if p < 0 {
			continue
		}
		s.rows[r], s.rows[p] = s.rows[p], s.rows[r]
		s.pivots[c] = r
		for i := r + 1; i < len(s.rows); i++ {
			if s.rows[i][c].Sign() != 0 {
				s.clear(i, r, c)
			}
		}
		r++
	}
}

func (s *system) findPivot(from, c int) int {
	for i := from; i < len(s.rows); i++ {
		if s.rows[i][c].Sign() != 0 {
			return i
		}
	}
	return -1
}

// clear zeroes rows[i][c] using pivot row r. With a the pivot value, b the
// entry to clear and l = lcm(a, b), the row becomes row_i*(l/b) - row_r*(l/a).
func (s *system) clear(i, r, c int) {
	a, b := s.rows[r][c], s.rows[i][c]
	l := modular.LCM(a, b)
	fi := new(big.Int).Quo(l, b)
	fr := new(big.Int).Quo(l, a)

	tmp := new(big.Int)
	for j := c; j < len(s.rows[i]); j++ {
		v := s.rows[i][j]
		v.Mul(v, fi)
		v.Sub(v, tmp.Mul(s.rows[r][j], fr))
		v.Mod(v, s.modulus)
	}
}

// constantTerm reads the secret off the eliminated matrix.
func (s *system) constantTerm() (*big.Int, error) {
	k := len(s.pivots)
	for i, row := range s.rows {
		if allZero(row[:k]) && row[k].Sign() != 0 {
			return nil, fmt.Errorf("%w: row %d reduces to 0 = %s", secretsharing.ErrInconsistentSystem, i, row[k])
		}
	}

	r := s.pivots[k-1]
	if r < 0 {
		return nil, fmt.Errorf("%w: %d fragments leave the secret undetermined",
			secretsharing.ErrInsufficientFragments, len(s.rows))
	}
	a, b := s.rows[r][k-1], s.rows[r][k]
	inv, err := modular.Inverse(a, s.modulus)
	if err != nil {
		if errors.Is(err, modular.ErrNotInvertible) {
			return nil, fmt.Errorf("%w: %w", secretsharing.ErrNonInvertibleResidue, err)
		}
		return nil, err
	}
	secret := inv.Mul(inv, b)
	return secret.Mod(secret, s.modulus), nil
}

func allZero(values []*big.Int) bool {
	for _, v := range values {
		if v.Sign() != 0 {
			return false
		}
	}
	return true
}
