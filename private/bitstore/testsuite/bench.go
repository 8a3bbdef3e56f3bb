// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package testsuite

import (
	"math/rand"
	"testing"

	"storj.io/bloomgate/private/bitstore"
)

// RunBenchmarks runs common bitstore.Store benchmarks.
func RunBenchmarks(b *testing.B, store bitstore.Store) {
	const size = 1000000
	const hashes = 7

	key := uniqueKey(b)
	rng := rand.New(rand.NewSource(1))

	batches := make([][]uint64, 1024)
	for i := range batches {
		batch := make([]uint64, hashes)
		for k := range batch {
			batch[k] = uint64(rng.Int63n(size))
		}
		batches[i] = batch
	}

	b.Run("SetBits", func(b *testing.B) {
		ctx := b.Context()
		b.ReportAllocs()
		for i := 0; b.Loop(); i++ {
			if err := store.SetBits(ctx, key, batches[i%len(batches)]); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("GetBits", func(b *testing.B) {
		ctx := b.Context()
		b.ReportAllocs()
		for i := 0; b.Loop(); i++ {
			if _, err := store.GetBits(ctx, key, batches[i%len(batches)]); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("CountBits", func(b *testing.B) {
		ctx := b.Context()
		for b.Loop() {
			if _, err := store.CountBits(ctx, key); err != nil {
				b.Fatal(err)
			}
		}
	})
}
