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

package prime

import (
	"fmt"
	"io"
	"math/big"
	"sort"
	"sync"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/rand"
)

// CacheLimit is the inclusive upper bound of the small-prime cache.
const CacheLimit = 1 << 16

var (
	smallOnce  sync.Once
	smallCache *Cache
)

// Cache is a sorted, read-only table of every prime up to its limit.
type Cache struct {
	primes []uint32
	limit  uint32
}

// SmallPrimes returns the process-wide cache of primes in [2, CacheLimit].
// The table is built on first use and never modified afterwards.
func SmallPrimes() *Cache {
	smallOnce.Do(func() {
		smallCache = NewCache(CacheLimit)
	})
	return smallCache
}

// NewCache sieves all primes in [2, limit].
func NewCache(limit uint32) *Cache {
	if limit < 2 {
		return &Cache{limit: limit}
	}
	composite := make([]bool, limit+1)
	primes := make([]uint32, 0, limit/8)
	for i := uint32(2); i <= limit; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, i)
		for j := uint64(i) * uint64(i); j <= uint64(limit); j += uint64(i) {
			composite[j] = true
		}
	}
	return &Cache{primes: primes, limit: limit}
}

// Limit returns the inclusive upper bound covered by the cache.
func (c *Cache) Limit() uint32 {
	return c.limit
}

// Len returns the number of cached primes.
func (c *Cache) Len() int {
	return len(c.primes)
}

// InRange reports whether n lies in [0, Limit].
func (c *Cache) InRange(n *big.Int) bool {
	return n.Sign() >= 0 && n.IsUint64() && n.Uint64() <= uint64(c.limit)
}

// Contains reports whether n is a cached prime.
func (c *Cache) Contains(n *big.Int) bool {
	if !c.InRange(n) {
		return false
	}
	v := uint32(n.Uint64())
	i := sort.Search(len(c.primes), func(i int) bool { return c.primes[i] >= v })
	return i < len(c.primes) && c.primes[i] == v
}

// tail returns the index of the first cached prime strictly greater than n.
// The index equals Len() when no cached prime exceeds n.
func (c *Cache) tail(n *big.Int) int {
	if n == nil || n.Sign() < 0 {
		return 0
	}
	if !n.IsUint64() || n.Uint64() >= uint64(c.limit) {
		return len(c.primes)
	}
	v := uint32(n.Uint64())
	return sort.Search(len(c.primes), func(i int) bool { return c.primes[i] > v })
}

// NextAbove returns the smallest cached prime strictly greater than n. The
// second result is false when the cache holds no such prime.
func (c *Cache) NextAbove(n *big.Int) (*big.Int, bool) {
	i := c.tail(n)
	if i >= len(c.primes) {
		return nil, false
	}
	return new(big.Int).SetUint64(uint64(c.primes[i])), true
}

// RandomAbove draws a prime uniformly from the cached primes strictly
// greater than n, reading randomness from rng. The second result is false
// when the cache holds no such prime.
func (c *Cache) RandomAbove(n *big.Int, rng io.Reader) (*big.Int, bool, error) {
	i := c.tail(n)
	if i >= len(c.primes) {
		return nil, false, nil
	}
	idx, err := rand.Int(rng, big.NewInt(int64(len(c.primes)-i)))
	if err != nil {
		return nil, false, fmt.Errorf("prime: failed to draw cached prime: %w", err)
	}
	return new(big.Int).SetUint64(uint64(c.primes[i+int(idx.Int64())])), true, nil
}
