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

package sssa

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing"
)

// Share is one piece of a byte-string secret.
type Share struct {
	// ID identifies the split the share belongs to
	ID uuid.UUID `json:"id"`

	// Index is the share number (1 to Total)
	Index int `json:"index"`

	// Threshold is the minimum number of shares required to reconstruct
	Threshold int `json:"threshold"`

	// Total is the number of shares created
	Total int `json:"total"`

	// Value is the sssa-golang share string, base64 encoded
	Value string `json:"value"`

	// Metadata contains optional information about the share
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Bytes returns the raw share value
func (s *Share) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(s.Value)
}

// String returns a string representation of the share (for debugging)
func (s *Share) String() string {
	return fmt.Sprintf("Share{Index: %d, Threshold: %d/%d, Value: %s...}",
		s.Index, s.Threshold, s.Total, s.Value[:min(len(s.Value), 16)])
}

// Validate checks if the share has valid parameters
func (s *Share) Validate() error {
	if s.ID == uuid.Nil {
		return fmt.Errorf("%w: missing split id", secretsharing.ErrInvalidFragment)
	}
	if s.Threshold < 2 {
		return fmt.Errorf("%w: threshold %d (must be >= 2)", secretsharing.ErrThresholdOutOfRange, s.Threshold)
	}
	if s.Total < s.Threshold {
		return fmt.Errorf("%w: total %d (must be >= threshold %d)", secretsharing.ErrInvalidCount, s.Total, s.Threshold)
	}
	if s.Index < 1 || s.Index > s.Total {
		return fmt.Errorf("%w: index %d outside 1..%d", secretsharing.ErrInvalidFragment, s.Index, s.Total)
	}
	if s.Value == "" {
		return fmt.Errorf("%w: share value is empty", secretsharing.ErrInvalidFragment)
	}
	return nil
}

// Encode returns the share as URL-safe base64 JSON.
func (s *Share) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode share: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// ParseShare decodes and validates a share produced by Encode.
func ParseShare(token string) (*Share, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(token), "="))
	if err != nil {
		return nil, fmt.Errorf("%w: share is not base64url: %w", secretsharing.ErrInvalidFragment, err)
	}
	var share Share
	if err := json.Unmarshal(data, &share); err != nil {
		return nil, fmt.Errorf("%w: %w", secretsharing.ErrInvalidFragment, err)
	}
	if err := share.Validate(); err != nil {
		return nil, err
	}
	return &share, nil
}
