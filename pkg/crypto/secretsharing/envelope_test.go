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

package secretsharing

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"direct", ErrInsufficientFragments, "insufficient_fragments"},
		{"wrapped", fmt.Errorf("restore: %w", ErrInconsistentSystem), "inconsistent_system"},
		{"double wrapped", fmt.Errorf("%w: %w", ErrNonInvertibleResidue, errors.New("gcd 7")), "non_invertible_residue"},
		{"inequality", ErrInequalityUnsatisfiable, "inequality_unsatisfiable"},
		{"unknown", errors.New("disk on fire"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func shamirSet(t *testing.T) []*Envelope {
	t.Helper()
	id := uuid.New()
	modulus := big.NewInt(101)
	return []*Envelope{
		NewShamirEnvelope(id, 2, 3, modulus, 1, big.NewInt(47)),
		NewShamirEnvelope(id, 2, 3, modulus, 2, big.NewInt(52)),
		NewShamirEnvelope(id, 2, 3, modulus, 3, big.NewInt(57)),
	}
}

func TestEnvelope_EncodeParse(t *testing.T) {
	env := shamirSet(t)[1]

	token, err := env.Encode()
	require.NoError(t, err)
	assert.NotContains(t, token, "=")

	parsed, err := ParseEnvelope(token)
	require.NoError(t, err)
	assert.Equal(t, env.ID, parsed.ID)
	assert.Equal(t, SchemeShamir, parsed.Scheme)
	assert.Equal(t, 2, parsed.X)
	assert.Equal(t, 0, parsed.Value.Cmp(big.NewInt(52)))
	assert.Equal(t, 0, parsed.Modulus.Cmp(big.NewInt(101)))
	assert.Nil(t, parsed.PublicPrime)
}

func TestEnvelope_DecimalStrings(t *testing.T) {
	big1, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	env := NewAsmuthBloomEnvelope(uuid.New(), 2, 4, big.NewInt(1000003), big.NewInt(17), big1)

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "asmuth-bloom", raw["scheme"])
	assert.Equal(t, "123456789012345678901234567890", raw["fragment_modulus"])
	assert.Equal(t, "1000003", raw["public_prime"])
	assert.Equal(t, "17", raw["value"])
	assert.NotContains(t, raw, "modulus")
	assert.NotContains(t, raw, "x")
}

func TestParseEnvelope_Invalid(t *testing.T) {
	encode := func(v any) string {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(data)
	}
	id := uuid.NewString()

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"not base64", "%%%", ErrInvalidFragment},
		{"not json", base64.RawURLEncoding.EncodeToString([]byte("nope")), ErrInvalidFragment},
		{"bad decimal", encode(map[string]any{
			"id": id, "scheme": "shamir", "threshold": 1, "count": 1, "modulus": "0x11", "x": 1, "value": "3",
		}), ErrInvalidFragment},
		{"missing modulus", encode(map[string]any{
			"id": id, "scheme": "shamir", "threshold": 1, "count": 1, "x": 1, "value": "3",
		}), ErrInvalidModulus},
		{"threshold above count", encode(map[string]any{
			"id": id, "scheme": "shamir", "threshold": 4, "count": 3, "modulus": "11", "x": 1, "value": "3",
		}), ErrThresholdOutOfRange},
		{"x out of range", encode(map[string]any{
			"id": id, "scheme": "shamir", "threshold": 1, "count": 3, "modulus": "11", "x": 9, "value": "3",
		}), ErrInvalidFragment},
		{"unreduced value", encode(map[string]any{
			"id": id, "scheme": "shamir", "threshold": 1, "count": 3, "modulus": "11", "x": 1, "value": "11",
		}), ErrInvalidFragment},
		{"residue too large", encode(map[string]any{
			"id": id, "scheme": "asmuth-bloom", "threshold": 1, "count": 1,
			"public_prime": "7", "fragment_modulus": "11", "value": "12",
		}), ErrInvalidFragment},
		{"fragment modulus below prime", encode(map[string]any{
			"id": id, "scheme": "asmuth-bloom", "threshold": 1, "count": 1,
			"public_prime": "13", "fragment_modulus": "11", "value": "1",
		}), ErrInvalidModulus},
		{"unknown scheme", encode(map[string]any{
			"id": id, "scheme": "blakley", "threshold": 1, "count": 1, "value": "1",
		}), ErrInvalidFragment},
		{"nil id", encode(map[string]any{
			"id": uuid.Nil.String(), "scheme": "shamir", "threshold": 1, "count": 1, "modulus": "11", "x": 1, "value": "3",
		}), ErrInvalidFragment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEnvelope(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCheckSet(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		assert.NoError(t, CheckSet(shamirSet(t)[:2]))
	})

	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, CheckSet(nil), ErrInsufficientFragments)
	})

	t.Run("duplicates count once", func(t *testing.T) {
		set := shamirSet(t)
		assert.ErrorIs(t, CheckSet([]*Envelope{set[0], set[0]}), ErrInsufficientFragments)
	})

	t.Run("mixed splits", func(t *testing.T) {
		a := shamirSet(t)
		b := shamirSet(t)
		assert.ErrorIs(t, CheckSet([]*Envelope{a[0], b[1]}), ErrMismatchedFragments)
	})

	t.Run("mixed modulus", func(t *testing.T) {
		set := shamirSet(t)
		other := NewShamirEnvelope(set[0].ID, 2, 3, big.NewInt(103), 2, big.NewInt(5))
		assert.ErrorIs(t, CheckSet([]*Envelope{set[0], other}), ErrMismatchedFragments)
	})

	t.Run("asmuth-bloom moduli", func(t *testing.T) {
		id := uuid.New()
		p := big.NewInt(7)
		set := []*Envelope{
			NewAsmuthBloomEnvelope(id, 2, 3, p, big.NewInt(1), big.NewInt(11)),
			NewAsmuthBloomEnvelope(id, 2, 3, p, big.NewInt(2), big.NewInt(13)),
		}
		assert.NoError(t, CheckSet(set))
		assert.ErrorIs(t, CheckSet(set[:1]), ErrInsufficientFragments)
	})
}

func TestNewShamirEnvelope_CopiesInputs(t *testing.T) {
	y := big.NewInt(9)
	env := NewShamirEnvelope(uuid.New(), 1, 1, big.NewInt(11), 1, y)
	y.SetInt64(10)
	assert.Equal(t, int64(9), env.Value.Int64())
}
