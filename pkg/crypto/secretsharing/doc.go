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

// Package secretsharing holds what the threshold sharing schemes have in
// common: the error kinds callers match on and the fragment envelope used to
// move fragments between processes.
//
// The schemes themselves live in subpackages:
//
//   - shamir: polynomial sharing over a prime field with two independent
//     restore paths (Gaussian elimination and Lagrange interpolation)
//   - asmuthbloom: Chinese Remainder Theorem sharing over a set of prime
//     moduli satisfying the Asmuth-Bloom inequality
//   - sssa: byte-string sharing backed by sssa-golang
//
// # Threshold Semantics
//
// A secret split into N fragments with threshold T can be restored from any
// T distinct fragments. With fewer than T fragments the restore either fails
// with ErrInsufficientFragments or, for interpolation, yields a value that is
// unrelated to the secret.
//
// # Envelopes
//
// Fragments alone do not carry the public parameters needed to restore. An
// Envelope bundles one fragment with those parameters and an ID shared by
// every fragment of the same split:
//
//	env := secretsharing.NewShamirEnvelope(id, 3, 5, modulus, fragment.X, fragment.Y)
//	token, err := env.Encode()
//
// Encoded envelopes are URL-safe base64 JSON and can be pasted into a
// terminal, stored in a file, or handed to another process.
//
// # Security Considerations
//
// The arithmetic is not constant time. Fragments of the same split must be
// distributed to different parties; the envelope format offers no
// confidentiality of its own.
package secretsharing
