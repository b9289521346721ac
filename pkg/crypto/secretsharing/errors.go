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
	"errors"
)

var (
	// ErrThresholdOutOfRange is returned when a threshold or limit is not in [1, count].
	ErrThresholdOutOfRange = errors.New("secretsharing: threshold out of range")

	// ErrInsufficientFragments is returned when the supplied fragments cannot determine the secret.
	ErrInsufficientFragments = errors.New("secretsharing: insufficient fragments")

	// ErrInconsistentSystem is returned when the fragments contradict each other.
	ErrInconsistentSystem = errors.New("secretsharing: inconsistent fragments")

	// ErrNonInvertibleResidue is returned when a pivot has no inverse modulo the field prime.
	ErrNonInvertibleResidue = errors.New("secretsharing: non-invertible residue")

	// ErrInequalityUnsatisfiable is returned when no Asmuth-Bloom modulus set was found.
	ErrInequalityUnsatisfiable = errors.New("secretsharing: modulus inequality unsatisfiable")

	// ErrInvalidSecret is returned for nil or negative secrets.
	ErrInvalidSecret = errors.New("secretsharing: invalid secret")

	// ErrInvalidCount is returned when the fragment count is below one.
	ErrInvalidCount = errors.New("secretsharing: invalid fragment count")

	// ErrInvalidModulus is returned when a restore modulus is missing or below two.
	ErrInvalidModulus = errors.New("secretsharing: invalid modulus")

	// ErrInvalidFragment is returned for structurally malformed fragments.
	ErrInvalidFragment = errors.New("secretsharing: invalid fragment")

	// ErrMismatchedFragments is returned when fragments come from different splits.
	ErrMismatchedFragments = errors.New("secretsharing: fragments from different splits")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrThresholdOutOfRange, "threshold_out_of_range"},
	{ErrInsufficientFragments, "insufficient_fragments"},
	{ErrInconsistentSystem, "inconsistent_system"},
	{ErrNonInvertibleResidue, "non_invertible_residue"},
	{ErrInequalityUnsatisfiable, "inequality_unsatisfiable"},
	{ErrInvalidSecret, "invalid_secret"},
	{ErrInvalidCount, "invalid_count"},
	{ErrInvalidModulus, "invalid_modulus"},
	{ErrInvalidFragment, "invalid_fragment"},
	{ErrMismatchedFragments, "mismatched_fragments"},
}

// Kind maps err to a stable snake_case name suitable as a metric label.
// Errors that match none of the package sentinels map to "internal", and a
// nil error maps to "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}
