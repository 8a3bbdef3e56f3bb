// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package boltdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/bloomgate/private/bitstore/testsuite"
	"storj.io/common/testcontext"
)

func TestSuite(t *testing.T) {
	ctx := testcontext.New(t)

	client, err := New(ctx.File("bits.db"))
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	testsuite.RunTests(t, client)
}

func TestPersistence(t *testing.T) {
	ctx := testcontext.New(t)
	path := filepath.Join(ctx.Dir("bolt"), "bits.db")

	client, err := New(path)
	require.NoError(t, err)
	require.NoError(t, client.SetBits(ctx, "persist", []uint64{0, chunkBits - 1, chunkBits, 3 * chunkBits}))
	require.NoError(t, client.Close())

	client, err = New(path)
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	bits, err := client.GetBits(ctx, "persist", []uint64{0, 1, chunkBits - 1, chunkBits, chunkBits + 1, 3 * chunkBits})
	require.NoError(t, err)
	require.Equal(t, []bool{true, false, true, true, false, true}, bits)

	count, err := client.CountBits(ctx, "persist")
	require.NoError(t, err)
	require.EqualValues(t, 4, count)
}

func TestLocked(t *testing.T) {
	ctx := testcontext.New(t)
	path := ctx.File("locked.db")

	client, err := New(path)
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	_, err = New(path)
	require.True(t, Error.Has(err))
}

func BenchmarkSuite(b *testing.B) {
	ctx := testcontext.New(b)

	client, err := New(ctx.File("bits.db"))
	require.NoError(b, err)
	defer ctx.Check(client.Close)

	testsuite.RunBenchmarks(b, client)
}
