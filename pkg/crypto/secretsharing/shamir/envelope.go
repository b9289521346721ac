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

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing"
)

// Seal wraps the fragments of one split into envelopes that share a fresh
// split ID.
func Seal(fragments []Fragment, modulus *big.Int, threshold int) []*secretsharing.Envelope {
	id := uuid.New()
	envs := make([]*secretsharing.Envelope, len(fragments))
	for i, f := range fragments {
		envs[i] = secretsharing.NewShamirEnvelope(id, threshold, len(fragments), modulus, f.X, f.Y)
	}
	return envs
}

// Open checks that envs form a restorable Shamir set and returns their
// fragments and field modulus.
func Open(envs []*secretsharing.Envelope) ([]Fragment, *big.Int, error) {
	if err := secretsharing.CheckSet(envs); err != nil {
		return nil, nil, err
	}
	if envs[0].Scheme != secretsharing.SchemeShamir {
		return nil, nil, fmt.Errorf("%w: expected %s envelopes, got %s",
			secretsharing.ErrMismatchedFragments, secretsharing.SchemeShamir, envs[0].Scheme)
	}
	fragments := make([]Fragment, len(envs))
	for i, env := range envs {
		fragments[i] = Fragment{X: env.X, Y: new(big.Int).Set(env.Value)}
	}
	return fragments, new(big.Int).Set(envs[0].Modulus), nil
}
