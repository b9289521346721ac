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

package asmuthbloom

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing"
)

// Seal wraps the fragments of one split into envelopes that share a fresh
// split ID.
func Seal(fragments []Fragment, limit int) []*secretsharing.Envelope {
	id := uuid.New()
	envs := make([]*secretsharing.Envelope, len(fragments))
	for i, f := range fragments {
		envs[i] = secretsharing.NewAsmuthBloomEnvelope(id, limit, len(fragments), f.PublicPrime, f.Residue, f.Modulus)
	}
	return envs
}

// Open checks that envs form a restorable Asmuth-Bloom set and returns
// their fragments and limit.
func Open(envs []*secretsharing.Envelope) ([]Fragment, int, error) {
	if err := secretsharing.CheckSet(envs); err != nil {
		return nil, 0, err
	}
	if envs[0].Scheme != secretsharing.SchemeAsmuthBloom {
		return nil, 0, fmt.Errorf("%w: expected %s envelopes, got %s",
			secretsharing.ErrMismatchedFragments, secretsharing.SchemeAsmuthBloom, envs[0].Scheme)
	}
	fragments := make([]Fragment, len(envs))
	for i, env := range envs {
		fragments[i] = Fragment{
			Residue:     new(big.Int).Set(env.Value),
			Modulus:     new(big.Int).Set(env.FragmentModulus),
			PublicPrime: new(big.Int).Set(env.PublicPrime),
		}
	}
	return fragments, envs[0].Threshold, nil
}
