// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package redis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/bloomgate/private/bitstore/testsuite"
	"storj.io/bloomgate/private/testredis"
	"storj.io/common/testcontext"
)

func TestSuite(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	redis, err := testredis.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { require.NoError(t, redis.Close()) }()

	client, err := OpenClient(ctx, redis.Addr(), "", 1)
	if err != nil {
		t.Fatal(err)
	}
	defer ctx.Check(client.Close)

	testsuite.RunTests(t, client)
}

func TestOpenClientFrom(t *testing.T) {
	ctx := testcontext.New(t)

	redis, err := testredis.Mini(ctx)
	require.NoError(t, err)
	defer func() { require.NoError(t, redis.Close()) }()

	client, err := OpenClientFrom(ctx, redis.URL(1))
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	require.NoError(t, client.SetBits(ctx, "url", []uint64{42}))
	require.NoError(t, client.Ping(ctx))

	count, err := client.CountBits(ctx, "url")
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	require.NoError(t, client.FlushDB(ctx))
	count, err = client.CountBits(ctx, "url")
	require.NoError(t, err)
	require.Zero(t, count)

	_, err = OpenClientFrom(ctx, "http://"+redis.Addr())
	require.Error(t, err)
}

func TestServerError(t *testing.T) {
	ctx := testcontext.New(t)

	redis, err := testredis.Mini(ctx)
	require.NoError(t, err)
	defer func() { require.NoError(t, redis.Close()) }()

	client, err := OpenClientFrom(ctx, redis.URL(0))
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	redis.SetError("LOADING redis is loading the dataset in memory")

	_, err = client.GetBits(ctx, "bits", []uint64{1, 2, 3})
	require.True(t, Error.Has(err))

	err = client.SetBits(ctx, "bits", []uint64{1})
	require.True(t, Error.Has(err))

	_, err = client.CountBits(ctx, "bits")
	require.True(t, Error.Has(err))

	redis.SetError("")
	_, err = client.GetBits(ctx, "bits", []uint64{1, 2, 3})
	require.NoError(t, err)
}

func TestInvalidConnection(t *testing.T) {
	_, err := OpenClient(t.Context(), "", "", 1)
	if err == nil {
		t.Fatal("expected connection error")
	}
}

func BenchmarkSuite(b *testing.B) {
	ctx := b.Context()

	redis, err := testredis.Start(ctx)
	if err != nil {
		b.Fatal(err)
	}
	defer func() { require.NoError(b, redis.Close()) }()

	client, err := OpenClient(ctx, redis.Addr(), "", 1)
	if err != nil {
		b.Fatal(err)
	}
	defer func() { _ = client.Close() }()

	testsuite.RunBenchmarks(b, client)
}
