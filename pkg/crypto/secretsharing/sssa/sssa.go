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

// Package sssa shares arbitrary byte strings with Shamir's scheme over the
// fixed 256-bit prime field of sssa-golang.
//
// Unlike the shamir package, the field is not chosen per secret and no
// public parameters travel with the shares, so it suits text secrets and
// keys whose size is unrelated to a field bound. Shares carry the split ID,
// threshold and total so Combine can refuse mixed sets.
package sssa

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	sssago "github.com/SSSaaS/sssa-golang"
	"github.com/google/uuid"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-secretshare/pkg/metrics"
)

// MaxShares is the largest threshold or total accepted by Split.
const MaxShares = 255

// Split divides secret into total shares where any threshold of them
// reconstruct it. The secret is hex encoded before it is handed to
// sssa-golang so binary data survives the round trip.
//
// Example:
//
//	shares, err := sssa.Split([]byte("my secret key"), 3, 5)
//	// Creates 5 shares, any 3 can reconstruct the secret
func Split(secret []byte, threshold, total int) (shares []*Share, err error) {
	start := time.Now()
	defer func() {
		observe(metrics.OpSplit, start, err)
		if err == nil {
			metrics.RecordFragments(metrics.SchemeSSSA, len(shares))
		}
	}()

	if threshold < 2 || threshold > MaxShares {
		return nil, fmt.Errorf("%w: threshold %d must be in [2, %d]",
			secretsharing.ErrThresholdOutOfRange, threshold, MaxShares)
	}
	if total < threshold || total > MaxShares {
		return nil, fmt.Errorf("%w: total %d must be in [%d, %d]",
			secretsharing.ErrInvalidCount, total, threshold, MaxShares)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: secret cannot be empty", secretsharing.ErrInvalidSecret)
	}

	raw, err := sssago.Create(threshold, total, hex.EncodeToString(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to split secret: %w", err)
	}

	id := uuid.New()
	shares = make([]*Share, len(raw))
	for i, s := range raw {
		shares[i] = &Share{
			ID:        id,
			Index:     i + 1,
			Threshold: threshold,
			Total:     total,
			Value:     base64.StdEncoding.EncodeToString([]byte(s)),
			Metadata:  make(map[string]string),
		}
	}
	return shares, nil
}

// Combine reconstructs the secret from at least threshold shares of one
// split, in any order.
//
// Example:
//
//	secret, err := sssa.Combine([]*sssa.Share{shares[0], shares[2], shares[4]})
func Combine(shares []*Share) (secret []byte, err error) {
	start := time.Now()
	defer func() { observe(metrics.OpCombine, start, err) }()

	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no shares provided", secretsharing.ErrInsufficientFragments)
	}
	for i, share := range shares {
		if err := VerifyShare(share, shares[:i]); err != nil {
			return nil, fmt.Errorf("share %d: %w", i, err)
		}
	}
	if threshold := shares[0].Threshold; len(shares) < threshold {
		return nil, fmt.Errorf("%w: need at least %d shares, got %d",
			secretsharing.ErrInsufficientFragments, threshold, len(shares))
	}

	raw := make([]string, len(shares))
	for i, share := range shares {
		decoded, err := share.Bytes()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to decode share %d: %w", secretsharing.ErrInvalidFragment, i, err)
		}
		raw[i] = string(decoded)
	}

	secretHex, err := sssago.Combine(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to combine shares: %w", err)
	}
	secret, err = hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("%w: combined value is not a hex secret: %w", secretsharing.ErrInconsistentSystem, err)
	}
	return secret, nil
}

// VerifyShare checks that share is well formed and belongs to the same
// split as others without repeating one of their indices.
func VerifyShare(share *Share, others []*Share) error {
	if share == nil {
		return fmt.Errorf("%w: share is nil", secretsharing.ErrInvalidFragment)
	}
	if err := share.Validate(); err != nil {
		return err
	}
	for i, other := range others {
		if other.ID != share.ID {
			return fmt.Errorf("%w: split %s differs from share %d (%s)",
				secretsharing.ErrMismatchedFragments, share.ID, i, other.ID)
		}
		if other.Threshold != share.Threshold || other.Total != share.Total {
			return fmt.Errorf("%w: parameters %d/%d differ from share %d (%d/%d)",
				secretsharing.ErrMismatchedFragments, share.Threshold, share.Total, i, other.Threshold, other.Total)
		}
		if other.Index == share.Index {
			return fmt.Errorf("%w: duplicate share index %d", secretsharing.ErrInvalidFragment, share.Index)
		}
	}
	return nil
}

func observe(operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		metrics.RecordError(operation, metrics.SchemeSSSA, secretsharing.Kind(err))
	}
	metrics.RecordOperation(operation, metrics.SchemeSSSA, status, time.Since(start).Seconds())
}
