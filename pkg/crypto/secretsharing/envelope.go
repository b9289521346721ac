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
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Scheme identifies the sharing scheme an envelope belongs to.
type Scheme string

const (
	SchemeShamir      Scheme = "shamir"
	SchemeAsmuthBloom Scheme = "asmuth-bloom"
)

// Envelope carries one fragment together with the public parameters needed
// to restore the secret. Every envelope produced by the same split shares
// the same ID.
type Envelope struct {
	// ID identifies the split the fragment belongs to
	ID uuid.UUID

	// Scheme is the sharing scheme
	Scheme Scheme

	// Threshold is the number of fragments required to restore
	Threshold int

	// Count is the number of fragments produced by the split
	Count int

	// Modulus is the Shamir field prime
	Modulus *big.Int

	// PublicPrime is the Asmuth-Bloom prime p
	PublicPrime *big.Int

	// X is the Shamir evaluation point
	X int

	// Value is the Shamir y coordinate or the Asmuth-Bloom residue
	Value *big.Int

	// FragmentModulus is the Asmuth-Bloom modulus d_i
	FragmentModulus *big.Int
}

type envelopeJSON struct {
	ID              string `json:"id"`
	Scheme          Scheme `json:"scheme"`
	Threshold       int    `json:"threshold"`
	Count           int    `json:"count"`
	Modulus         string `json:"modulus,omitempty"`
	PublicPrime     string `json:"public_prime,omitempty"`
	X               int    `json:"x,omitempty"`
	Value           string `json:"value"`
	FragmentModulus string `json:"fragment_modulus,omitempty"`
}

// NewShamirEnvelope wraps the Shamir fragment (x, y) of a split.
func NewShamirEnvelope(id uuid.UUID, threshold, count int, modulus *big.Int, x int, y *big.Int) *Envelope {
	return &Envelope{
		ID:        id,
		Scheme:    SchemeShamir,
		Threshold: threshold,
		Count:     count,
		Modulus:   copyInt(modulus),
		X:         x,
		Value:     copyInt(y),
	}
}

// NewAsmuthBloomEnvelope wraps the Asmuth-Bloom fragment (residue, modulus)
// of a split.
func NewAsmuthBloomEnvelope(id uuid.UUID, limit, count int, publicPrime, residue, modulus *big.Int) *Envelope {
	return &Envelope{
		ID:              id,
		Scheme:          SchemeAsmuthBloom,
		Threshold:       limit,
		Count:           count,
		PublicPrime:     copyInt(publicPrime),
		Value:           copyInt(residue),
		FragmentModulus: copyInt(modulus),
	}
}

// MarshalJSON implements json.Marshaler for Envelope. Big integers are
// written as decimal strings.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(&envelopeJSON{
		ID:              e.ID.String(),
		Scheme:          e.Scheme,
		Threshold:       e.Threshold,
		Count:           e.Count,
		Modulus:         decimal(e.Modulus),
		PublicPrime:     decimal(e.PublicPrime),
		X:               e.X,
		Value:           decimal(e.Value),
		FragmentModulus: decimal(e.FragmentModulus),
	})
}

// UnmarshalJSON implements json.Unmarshaler for Envelope
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var aux envelopeJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := uuid.Parse(aux.ID)
	if err != nil {
		return fmt.Errorf("envelope id: %w", err)
	}

	out := Envelope{
		ID:        id,
		Scheme:    aux.Scheme,
		Threshold: aux.Threshold,
		Count:     aux.Count,
		X:         aux.X,
	}
	fields := []struct {
		name string
		raw  string
		dst  **big.Int
	}{
		{"modulus", aux.Modulus, &out.Modulus},
		{"public_prime", aux.PublicPrime, &out.PublicPrime},
		{"value", aux.Value, &out.Value},
		{"fragment_modulus", aux.FragmentModulus, &out.FragmentModulus},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		n, ok := new(big.Int).SetString(f.raw, 10)
		if !ok {
			return fmt.Errorf("envelope %s: %q is not a decimal integer", f.name, f.raw)
		}
		*f.dst = n
	}
	*e = out
	return nil
}

// Encode returns the envelope as URL-safe base64 JSON.
func (e *Envelope) Encode() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to encode envelope: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// ParseEnvelope decodes and validates an envelope produced by Encode.
func ParseEnvelope(s string) (*Envelope, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(s), "="))
	if err != nil {
		return nil, fmt.Errorf("%w: envelope is not base64url: %w", ErrInvalidFragment, err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFragment, err)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

// Validate checks the envelope carries every field its scheme needs.
func (e *Envelope) Validate() error {
	if e.ID == uuid.Nil {
		return fmt.Errorf("%w: missing split id", ErrInvalidFragment)
	}
	if e.Count < 1 {
		return fmt.Errorf("%w: count %d", ErrInvalidCount, e.Count)
	}
	if e.Threshold < 1 || e.Threshold > e.Count {
		return fmt.Errorf("%w: threshold %d with count %d", ErrThresholdOutOfRange, e.Threshold, e.Count)
	}
	if e.Value == nil || e.Value.Sign() < 0 {
		return fmt.Errorf("%w: missing or negative value", ErrInvalidFragment)
	}

	switch e.Scheme {
	case SchemeShamir:
		if e.Modulus == nil || e.Modulus.Cmp(big.NewInt(2)) < 0 {
			return fmt.Errorf("%w: shamir envelope needs a field modulus", ErrInvalidModulus)
		}
		if e.X < 1 || e.X > e.Count {
			return fmt.Errorf("%w: x %d outside 1..%d", ErrInvalidFragment, e.X, e.Count)
		}
		if e.Value.Cmp(e.Modulus) >= 0 {
			return fmt.Errorf("%w: value not reduced modulo %s", ErrInvalidFragment, e.Modulus)
		}
	case SchemeAsmuthBloom:
		if e.PublicPrime == nil || e.PublicPrime.Cmp(big.NewInt(2)) < 0 {
			return fmt.Errorf("%w: asmuth-bloom envelope needs a public prime", ErrInvalidModulus)
		}
		if e.FragmentModulus == nil || e.FragmentModulus.Cmp(e.PublicPrime) <= 0 {
			return fmt.Errorf("%w: fragment modulus must exceed the public prime", ErrInvalidModulus)
		}
		if e.Value.Cmp(e.FragmentModulus) >= 0 {
			return fmt.Errorf("%w: residue not reduced modulo %s", ErrInvalidFragment, e.FragmentModulus)
		}
	default:
		return fmt.Errorf("%w: unknown scheme %q", ErrInvalidFragment, e.Scheme)
	}
	return nil
}

// CheckSet verifies that envs belong to one split and are enough to restore
// it. Envelopes repeating a coordinate count once.
func CheckSet(envs []*Envelope) error {
	if len(envs) == 0 {
		return fmt.Errorf("%w: no envelopes", ErrInsufficientFragments)
	}
	first := envs[0]
	distinct := make(map[string]struct{}, len(envs))
	for i, env := range envs {
		if env == nil {
			return fmt.Errorf("%w: envelope %d is nil", ErrInvalidFragment, i)
		}
		if err := env.Validate(); err != nil {
			return fmt.Errorf("envelope %d: %w", i, err)
		}
		if env.ID != first.ID || env.Scheme != first.Scheme ||
			env.Threshold != first.Threshold || env.Count != first.Count ||
			!sameInt(env.Modulus, first.Modulus) || !sameInt(env.PublicPrime, first.PublicPrime) {
			return fmt.Errorf("%w: envelope %d does not match split %s", ErrMismatchedFragments, i, first.ID)
		}
		if env.Scheme == SchemeShamir {
			distinct[fmt.Sprint(env.X)] = struct{}{}
		} else {
			distinct[env.FragmentModulus.String()] = struct{}{}
		}
	}
	if len(distinct) < first.Threshold {
		return fmt.Errorf("%w: need %d distinct fragments, got %d",
			ErrInsufficientFragments, first.Threshold, len(distinct))
	}
	return nil
}

// String returns a short description of the envelope (for debugging)
func (e *Envelope) String() string {
	return fmt.Sprintf("Envelope{ID: %s, Scheme: %s, Threshold: %d/%d, X: %d}",
		e.ID, e.Scheme, e.Threshold, e.Count, e.X)
}

func decimal(n *big.Int) string {
	if n == nil {
		return ""
	}
	return n.String()
}

func copyInt(n *big.Int) *big.Int {
	if n == nil {
		return nil
	}
	return new(big.Int).Set(n)
}

func sameInt(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
