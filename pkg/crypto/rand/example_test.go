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
	"fmt"
	"log"
	"math/big"
)

// ExampleNewResolver_software demonstrates drawing a polynomial coefficient.
func ExampleNewResolver_software() {
	resolver, err := NewResolver(ModeSoftware)
	if err != nil {
		log.Fatal(err)
	}
	defer resolver.Close()

	// uniform in [1, p-1] for p = 101
	c, err := resolver.Range(big.NewInt(1), big.NewInt(100))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(c.Sign() > 0 && c.Cmp(big.NewInt(101)) < 0)
	// Output: true
}

// ExampleNewResolver_seeded demonstrates a reproducible stream for tests.
func ExampleNewResolver_seeded() {
	a, _ := NewResolver(&Config{Mode: ModeSeeded, Seed: 2025})
	b, _ := NewResolver(&Config{Mode: ModeSeeded, Seed: 2025})

	x, _ := a.Int(big.NewInt(1_000_000))
	y, _ := b.Int(big.NewInt(1_000_000))

	fmt.Println(x.Cmp(y) == 0)
	// Output: true
}
