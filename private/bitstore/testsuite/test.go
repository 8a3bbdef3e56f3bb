// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package testsuite contains common tests for bitstore.Store implementations.
package testsuite

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/bloomgate/private/bitstore"
	"storj.io/common/testcontext"
	"storj.io/common/testrand"
)

// highPosition is far beyond any default filter size while keeping bit
// arrays small.
const highPosition = 1 << 24

// RunTests runs common bitstore.Store tests.
func RunTests(t *testing.T, store bitstore.Store) {
	t.Run("SetGet", func(t *testing.T) { testSetGet(t, store) })
	t.Run("Idempotent", func(t *testing.T) { testIdempotent(t, store) })
	t.Run("Isolation", func(t *testing.T) { testIsolation(t, store) })
	t.Run("Constraints", func(t *testing.T) { testConstraints(t, store) })
	t.Run("Parallel", func(t *testing.T) { testParallel(t, store) })
}

func uniqueKey(t testing.TB) bitstore.Key {
	return bitstore.Key("testsuite:" + t.Name() + ":" + strconv.FormatInt(testrand.Int63n(math.MaxInt64), 36))
}

func testSetGet(t *testing.T, store bitstore.Store) {
	ctx := testcontext.New(t)
	key := uniqueKey(t)

	// a set bit at MaxPosition makes redis allocate 512MiB, so the upper
	// bound is only checked by rejecting MaxPosition+1
	positions := []uint64{0, 1, 7, 8, 4095, 4096, 999999, highPosition}

	bits, err := store.GetBits(ctx, key, positions)
	require.NoError(t, err)
	require.Len(t, bits, len(positions))
	for i, bit := range bits {
		assert.False(t, bit, "position %d set before write", positions[i])
	}

	count, err := store.CountBits(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, store.SetBits(ctx, key, positions))

	bits, err = store.GetBits(ctx, key, positions)
	require.NoError(t, err)
	for i, bit := range bits {
		assert.True(t, bit, "position %d not set after write", positions[i])
	}

	neighbours := []uint64{2, 6, 9, 4094, 4097, 999998, 1000000, highPosition - 1, highPosition + 1}
	bits, err = store.GetBits(ctx, key, neighbours)
	require.NoError(t, err)
	for i, bit := range bits {
		assert.False(t, bit, "position %d unexpectedly set", neighbours[i])
	}

	count, err = store.CountBits(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, len(positions), count)

	ok, err := bitstore.GetBit(ctx, store, key, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, bitstore.SetBit(ctx, store, key, 5))
	ok, err = bitstore.GetBit(ctx, store, key, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	bits, err = store.GetBits(ctx, key, nil)
	require.NoError(t, err)
	assert.Empty(t, bits)
	require.NoError(t, store.SetBits(ctx, key, nil))
}

func testIdempotent(t *testing.T, store bitstore.Store) {
	ctx := testcontext.New(t)
	key := uniqueKey(t)

	positions := []uint64{3, 3, 17, 17, 17, 65}
	for range 3 {
		require.NoError(t, store.SetBits(ctx, key, positions))
	}

	count, err := store.CountBits(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func testIsolation(t *testing.T, store bitstore.Store) {
	ctx := testcontext.New(t)
	first, second := uniqueKey(t), uniqueKey(t)

	require.NoError(t, store.SetBits(ctx, first, []uint64{10, 20}))

	bits, err := store.GetBits(ctx, second, []uint64{10, 20})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, bits)

	count, err := store.CountBits(ctx, second)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func testConstraints(t *testing.T, store bitstore.Store) {
	ctx := testcontext.New(t)

	t.Run("Empty key", func(t *testing.T) {
		_, err := store.GetBits(ctx, "", []uint64{1})
		require.True(t, bitstore.ErrEmptyKey.Has(err))

		err = store.SetBits(ctx, "", []uint64{1})
		require.True(t, bitstore.ErrEmptyKey.Has(err))

		_, err = store.CountBits(ctx, "")
		require.True(t, bitstore.ErrEmptyKey.Has(err))
	})

	t.Run("Out of range", func(t *testing.T) {
		key := uniqueKey(t)

		err := store.SetBits(ctx, key, []uint64{1, bitstore.MaxPosition + 1})
		require.True(t, bitstore.ErrOutOfRange.Has(err))

		_, err = store.GetBits(ctx, key, []uint64{bitstore.MaxPosition + 1})
		require.True(t, bitstore.ErrOutOfRange.Has(err))

		// a rejected batch must not be partially applied
		count, err := store.CountBits(ctx, key)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func testParallel(t *testing.T, store bitstore.Store) {
	key := uniqueKey(t)

	const workers = 8
	const perWorker = 64

	t.Run("group", func(t *testing.T) {
		for worker := range workers {
			t.Run(strconv.Itoa(worker), func(t *testing.T) {
				t.Parallel()
				ctx := testcontext.New(t)

				positions := make([]uint64, perWorker)
				for i := range positions {
					positions[i] = uint64(worker*perWorker + i)
				}
				require.NoError(t, store.SetBits(ctx, key, positions))

				bits, err := store.GetBits(ctx, key, positions)
				require.NoError(t, err)
				for i, bit := range bits {
					assert.True(t, bit, "position %d", positions[i])
				}
			})
		}
	})

	ctx := testcontext.New(t)
	count, err := store.CountBits(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, workers*perWorker, count)
}
