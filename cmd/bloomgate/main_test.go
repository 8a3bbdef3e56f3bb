// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/bloomgate/gateway/bloom"
	"storj.io/bloomgate/gateway/maintenance"
	"storj.io/bloomgate/gateway/routes"
	"storj.io/bloomgate/private/bitstore/memstore"
	"storj.io/common/testcontext"
)

func TestReadIDs(t *testing.T) {
	ids, err := readIDs(strings.NewReader("1\n 2 \n\n3\r\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, ids)

	ids, err = readIDs(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestBackfill(t *testing.T) {
	ctx := testcontext.New(t)
	log := zaptest.NewLogger(t)

	filter, err := bloom.New(log, memstore.New(), bloom.Config{
		Size:      1000000,
		HashCount: 7,
		Prefix:    "bloom_filter:",
		Hash:      "xxh3",
	})
	require.NoError(t, err)
	service := maintenance.NewService(log, filter, routes.Default())

	var ids []string
	for i := range 1050 {
		ids = append(ids, strconv.Itoa(i))
	}

	var progressed atomic.Int64
	added, err := backfill(ctx, service, "Article", ids, 4, 100, func(n int) {
		progressed.Add(int64(n))
	})
	require.NoError(t, err)
	require.EqualValues(t, len(ids), added)
	require.EqualValues(t, len(ids), progressed.Load())

	for _, id := range ids {
		require.True(t, filter.MightContain(ctx, "blog", id), id)
	}
}

func TestBackfill_Canceled(t *testing.T) {
	log := zaptest.NewLogger(t)

	filter, err := bloom.New(log, memstore.New(), bloom.Config{
		Size:      1000,
		HashCount: 3,
		Prefix:    "bloom_filter:",
		Hash:      "crc32",
	})
	require.NoError(t, err)
	service := maintenance.NewService(log, filter, routes.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = backfill(ctx, service, "work", []string{"1", "2", "3"}, 1, 1, func(int) {})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPrintSize(t *testing.T) {
	ctx := testcontext.New(t)

	sizeItems, sizeFPRate, sizeMeasured, sizeHash, sizeProbes = 1000, 0.01, true, "xxh3", 5000
	var out strings.Builder
	require.NoError(t, printSize(ctx, &out))
	require.Contains(t, out.String(), "bloom.hash-count: 7\n")
	require.Contains(t, out.String(), "measured false positive rate (xxh3): ")
	require.Contains(t, out.String(), "reference filter false positive rate: ")
	require.NotContains(t, out.String(), "warning")

	sizeItems, sizeMeasured = 1000000000, true
	out.Reset()
	require.NoError(t, printSize(ctx, &out))
	require.Contains(t, out.String(), "warning: size exceeds the bit store limit")
	require.NotContains(t, out.String(), "measured")

	sizeItems, sizeMeasured, sizeHash = 1000, true, "md5"
	require.Error(t, printSize(ctx, io.Discard))

	sizeItems = 0
	require.Error(t, printSize(ctx, io.Discard))
}
