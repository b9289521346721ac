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

package rand

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"golang.org/x/crypto/chacha20"
)

// SeededResolver produces a reproducible ChaCha20 keystream. All draws are
// serialised by a mutex, so a single instance may be shared between
// goroutines; the interleaving of draws then decides which caller sees
// which bytes.
type SeededResolver struct {
	mu     sync.Mutex
	stream *chacha20.Cipher
	closed bool
}

var _ Resolver = (*SeededResolver)(nil)

// newSeededResolver keys ChaCha20 with SHA-256(seed) and a zero nonce.
func newSeededResolver(seed uint64) (*SeededResolver, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seed)
	key := sha256.Sum256(buf[:])
	nonce := make([]byte, chacha20.NonceSize)
	stream, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		return nil, fmt.Errorf("rand: failed to key seeded stream: %w", err)
	}
	return &SeededResolver{stream: stream}, nil
}

// Read implements io.Reader.
func (s *SeededResolver) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	clear(p)
	s.stream.XORKeyStream(p, p)
	return len(p), nil
}

func (s *SeededResolver) Int(max *big.Int) (*big.Int, error) {
	return Int(s, max)
}

func (s *SeededResolver) Range(low, high *big.Int) (*big.Int, error) {
	return Range(s, low, high)
}

func (s *SeededResolver) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *SeededResolver) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
