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
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/rand"
	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-secretshare/pkg/prime"
)

func seededEngine(t *testing.T, seed uint64) *Engine {
	t.Helper()
	rng, err := rand.NewResolver(&rand.Config{Mode: rand.ModeSeeded, Seed: seed})
	require.NoError(t, err)
	e, err := New(&Config{Rand: rng})
	require.NoError(t, err)
	return e
}

func pick(fragments []Fragment, xs ...int) []Fragment {
	out := make([]Fragment, 0, len(xs))
	for _, x := range xs {
		out = append(out, fragments[x-1])
	}
	return out
}

func TestShare_Secret42(t *testing.T) {
	e := seededEngine(t, 42)

	fragments, modulus, err := e.Share(big.NewInt(42), 5, 3)
	require.NoError(t, err)
	require.Len(t, fragments, 5)
	assert.True(t, prime.IsPrime(modulus))
	assert.Equal(t, 1, modulus.Cmp(big.NewInt(42)))

	for i, f := range fragments {
		assert.Equal(t, i+1, f.X)
		assert.True(t, f.Y.Sign() >= 0 && f.Y.Cmp(modulus) < 0)
	}

	for _, subset := range [][]int{{1, 3, 5}, {2, 4, 5}, {5, 1, 3}, {1, 2, 3}} {
		got, err := e.Restore(pick(fragments, subset...), modulus)
		require.NoError(t, err, "subset %v", subset)
		assert.Equal(t, int64(42), got.Int64(), "elimination subset %v", subset)

		got, err = e.Interpolate(pick(fragments, subset...), modulus)
		require.NoError(t, err, "subset %v", subset)
		assert.Equal(t, int64(42), got.Int64(), "interpolation subset %v", subset)
	}
}

func TestShare_AllFragments(t *testing.T) {
	e := seededEngine(t, 7)
	secret, _ := new(big.Int).SetString("98765432109876543210987654321", 10)

	fragments, modulus, err := e.Share(secret, 6, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, modulus.Cmp(secret))

	got, err := e.Restore(fragments, modulus)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Cmp(secret))

	got, err = e.Interpolate(fragments, modulus)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Cmp(secret))
}

func TestShare_ModulusAboveCount(t *testing.T) {
	e := seededEngine(t, 3)

	for i := 0; i < 20; i++ {
		fragments, modulus, err := e.Share(big.NewInt(0), 10, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, modulus.Cmp(big.NewInt(10)))

		got, err := e.Restore(fragments, modulus)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Sign())
	}
}

func TestShare_ThresholdOne(t *testing.T) {
	e := seededEngine(t, 1)

	fragments, modulus, err := e.Share(big.NewInt(9), 3, 1)
	require.NoError(t, err)
	for _, f := range fragments {
		assert.Equal(t, int64(9), f.Y.Int64())
	}

	got, err := e.Restore(fragments[2:], modulus)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.Int64())
}

func TestShare_Validation(t *testing.T) {
	e := seededEngine(t, 1)

	tests := []struct {
		name      string
		secret    *big.Int
		count     int
		threshold int
		want      error
	}{
		{"nil secret", nil, 3, 2, secretsharing.ErrInvalidSecret},
		{"negative secret", big.NewInt(-1), 3, 2, secretsharing.ErrInvalidSecret},
		{"zero count", big.NewInt(1), 0, 0, secretsharing.ErrInvalidCount},
		{"zero threshold", big.NewInt(1), 3, 0, secretsharing.ErrThresholdOutOfRange},
		{"threshold above count", big.NewInt(1), 3, 4, secretsharing.ErrThresholdOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fragments, modulus, err := e.Share(tt.secret, tt.count, tt.threshold)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, fragments)
			assert.Nil(t, modulus)
		})
	}
}

func TestShare_DoesNotMutateSecret(t *testing.T) {
	e := seededEngine(t, 5)
	secret := big.NewInt(1234)

	_, _, err := e.Share(secret, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), secret.Int64())
}

func TestShare_LargeSecretUsesSearch(t *testing.T) {
	e := seededEngine(t, 11)
	secret := new(big.Int).Lsh(big.NewInt(1), 70)

	_, modulus, err := e.Share(secret, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, modulus.Cmp(prime.NextPrimeAbove(secret)))
}

func TestShare_Reproducible(t *testing.T) {
	a, ma, err := seededEngine(t, 99).Share(big.NewInt(500), 4, 3)
	require.NoError(t, err)
	b, mb, err := seededEngine(t, 99).Share(big.NewInt(500), 4, 3)
	require.NoError(t, err)

	assert.Equal(t, 0, ma.Cmp(mb))
	for i := range a {
		assert.Equal(t, 0, a[i].Y.Cmp(b[i].Y))
	}
}

func TestRestore_Validation(t *testing.T) {
	e := seededEngine(t, 1)
	p := big.NewInt(101)

	tests := []struct {
		name      string
		fragments []Fragment
		modulus   *big.Int
		want      error
	}{
		{"no fragments", nil, p, secretsharing.ErrInsufficientFragments},
		{"nil modulus", []Fragment{{X: 1, Y: big.NewInt(1)}}, nil, secretsharing.ErrInvalidModulus},
		{"modulus one", []Fragment{{X: 1, Y: big.NewInt(1)}}, big.NewInt(1), secretsharing.ErrInvalidModulus},
		{"zero x", []Fragment{{X: 0, Y: big.NewInt(1)}}, p, secretsharing.ErrInvalidFragment},
		{"nil y", []Fragment{{X: 1}}, p, secretsharing.ErrInvalidFragment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Restore(tt.fragments, tt.modulus)
			assert.ErrorIs(t, err, tt.want)

			_, err = e.Interpolate(tt.fragments, tt.modulus)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRestore_Inconsistent(t *testing.T) {
	e := seededEngine(t, 1)

	secret, err := e.Restore([]Fragment{
		{X: 1, Y: big.NewInt(5)},
		{X: 1, Y: big.NewInt(6)},
	}, big.NewInt(7))
	assert.ErrorIs(t, err, secretsharing.ErrInconsistentSystem)
	assert.Nil(t, secret)
}

func TestRestore_DuplicateFragment(t *testing.T) {
	e := seededEngine(t, 1)
	f := Fragment{X: 2, Y: big.NewInt(4)}

	_, err := e.Restore([]Fragment{f, f}, big.NewInt(11))
	assert.ErrorIs(t, err, secretsharing.ErrInsufficientFragments)
}

func TestRestore_NonInvertible(t *testing.T) {
	e := seededEngine(t, 1)
	fragments := []Fragment{
		{X: 1, Y: big.NewInt(1)},
		{X: 3, Y: big.NewInt(3)},
	}

	_, err := e.Restore(fragments, big.NewInt(4))
	assert.ErrorIs(t, err, secretsharing.ErrNonInvertibleResidue)

	_, err = e.Interpolate(fragments, big.NewInt(4))
	assert.ErrorIs(t, err, secretsharing.ErrNonInvertibleResidue)
}

func TestRestore_KnownPolynomial(t *testing.T) {
	// f(x) = 2x^2 + 3x + 5 over GF(13)
	p := big.NewInt(13)
	poly := Polynomial{big.NewInt(2), big.NewInt(3), big.NewInt(5)}
	fragments := make([]Fragment, 4)
	for i := range fragments {
		x := i + 1
		fragments[i] = Fragment{X: x, Y: poly.Evaluate(big.NewInt(int64(x)), p)}
	}
	assert.Equal(t, int64(10), fragments[0].Y.Int64())
	assert.Equal(t, int64(6), fragments[1].Y.Int64())

	e := seededEngine(t, 1)
	got, err := e.Restore(fragments[1:], p)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Int64())

	got, err = e.Interpolate(fragments[:3], p)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Int64())
}

func TestRestore_TooFewGivesWrongSecret(t *testing.T) {
	// f(x) = 3x^2 + 5x + 42 over GF(101): (1, 50), (2, 64), (3, 84)
	p := big.NewInt(101)
	poly := Polynomial{big.NewInt(3), big.NewInt(5), big.NewInt(42)}
	fragments := make([]Fragment, 3)
	for i := range fragments {
		x := i + 1
		fragments[i] = Fragment{X: x, Y: poly.Evaluate(big.NewInt(int64(x)), p)}
	}
	e := seededEngine(t, 8)

	// two points only fix the line through them, which crosses x = 0 at 36
	got, err := e.Interpolate(fragments[:2], p)
	require.NoError(t, err)
	assert.Equal(t, int64(36), got.Int64())
	assert.NotEqual(t, int64(42), got.Int64())

	got, err = e.Restore(fragments[:2], p)
	require.NoError(t, err, "two rows still pivot the constant column")
	assert.Equal(t, int64(36), got.Int64())

	got, err = e.Restore(fragments, p)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Int64())
}

func TestInterpolate_SkipsCongruentX(t *testing.T) {
	e := seededEngine(t, 8)
	p := big.NewInt(13)
	// 14 ≡ 1 (mod 13), the pair contributes no denominator
	fragments := []Fragment{{X: 1, Y: big.NewInt(4)}, {X: 14, Y: big.NewInt(4)}}

	got, err := e.Interpolate(fragments, p)
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.Int64())
}

func TestPolynomial(t *testing.T) {
	poly := Polynomial{big.NewInt(1), big.NewInt(0), big.NewInt(7)}
	assert.Equal(t, 2, poly.Degree())
	assert.Equal(t, int64(7), poly.Secret().Int64())
	assert.Equal(t, int64(16), poly.Evaluate(big.NewInt(3), big.NewInt(101)).Int64())
}

func TestRandomPolynomial(t *testing.T) {
	rng, err := rand.NewResolver(&rand.Config{Mode: rand.ModeSeeded, Seed: 4})
	require.NoError(t, err)
	p := big.NewInt(17)

	poly, err := randomPolynomial(big.NewInt(3), 5, p, rng)
	require.NoError(t, err)
	require.Len(t, poly, 5)
	assert.Equal(t, int64(3), poly.Secret().Int64())
	for _, c := range poly[:4] {
		assert.True(t, c.Sign() > 0 && c.Cmp(p) < 0, "coefficient %s", c)
	}
}

func TestPackageLevel(t *testing.T) {
	fragments, modulus, err := Share(big.NewInt(77), 4, 2)
	require.NoError(t, err)

	got, err := Restore(fragments[2:], modulus)
	require.NoError(t, err)
	assert.Equal(t, int64(77), got.Int64())

	got, err = Interpolate(fragments[:2], modulus)
	require.NoError(t, err)
	assert.Equal(t, int64(77), got.Int64())
}

func TestEngine_Concurrent(t *testing.T) {
	e := seededEngine(t, 12)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(secret int64) {
			defer wg.Done()
			fragments, modulus, err := e.Share(big.NewInt(secret), 5, 3)
			if err != nil {
				errs <- err
				return
			}
			got, err := e.Restore(fragments[1:4], modulus)
			if err != nil {
				errs <- err
				return
			}
			if got.Int64() != secret {
				errs <- assert.AnError
			}
		}(int64(i * 1000))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestSealOpen(t *testing.T) {
	e := seededEngine(t, 6)
	fragments, modulus, err := e.Share(big.NewInt(31337), 5, 3)
	require.NoError(t, err)

	envs := Seal(fragments, modulus, 3)
	require.Len(t, envs, 5)

	tokens := make([]string, 0, 3)
	for _, env := range []*secretsharing.Envelope{envs[4], envs[0], envs[2]} {
		token, err := env.Encode()
		require.NoError(t, err)
		tokens = append(tokens, token)
	}

	parsed := make([]*secretsharing.Envelope, len(tokens))
	for i, token := range tokens {
		parsed[i], err = secretsharing.ParseEnvelope(token)
		require.NoError(t, err)
	}

	opened, m, err := Open(parsed)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(modulus))

	got, err := e.Restore(opened, m)
	require.NoError(t, err)
	assert.Equal(t, int64(31337), got.Int64())

	_, _, err = Open(parsed[:2])
	assert.ErrorIs(t, err, secretsharing.ErrInsufficientFragments)
}
