// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package bloom_test

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"storj.io/bloomgate/gateway/bloom"
	"storj.io/bloomgate/private/bitstore"
	"storj.io/bloomgate/private/bitstore/memstore"
	"storj.io/bloomgate/private/bitstore/mock_bitstore"
	"storj.io/bloomgate/private/bitstore/redis"
	"storj.io/bloomgate/private/testredis"
	"storj.io/common/testcontext"
)

func testConfig() bloom.Config {
	return bloom.Config{
		Size:      1000000,
		HashCount: 7,
		Prefix:    "bloom_filter:",
		Hash:      string(bloom.XXH3),
		Timeout:   5 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, testConfig().Validate())

	for name, change := range map[string]func(*bloom.Config){
		"zero size":       func(c *bloom.Config) { c.Size = 0 },
		"negative size":   func(c *bloom.Config) { c.Size = -1 },
		"huge size":       func(c *bloom.Config) { c.Size = bitstore.MaxPosition + 2 },
		"no hashes":       func(c *bloom.Config) { c.HashCount = 0 },
		"too many hashes": func(c *bloom.Config) { c.HashCount = bloom.MaxHashCount + 1 },
		"unknown hash":    func(c *bloom.Config) { c.Hash = "sha1" },
	} {
		t.Run(name, func(t *testing.T) {
			config := testConfig()
			change(&config)
			require.True(t, bloom.Error.Has(config.Validate()))

			_, err := bloom.New(zaptest.NewLogger(t), memstore.New(), config)
			require.Error(t, err)
		})
	}
}

func TestFilter_NoFalseNegatives(t *testing.T) {
	ctx := testcontext.New(t)

	filter, err := bloom.New(zaptest.NewLogger(t), memstore.New(), testConfig())
	require.NoError(t, err)

	for i := range 5000 {
		require.NoError(t, filter.Add(ctx, "blog", strconv.Itoa(i)))
	}
	for i := range 5000 {
		require.True(t, filter.MightContain(ctx, "blog", strconv.Itoa(i)), "key %d", i)
	}
}

func TestFilter_Idempotent(t *testing.T) {
	ctx := testcontext.New(t)

	store := memstore.New()
	filter, err := bloom.New(zaptest.NewLogger(t), store, testConfig())
	require.NoError(t, err)

	require.NoError(t, filter.Add(ctx, "work", "99"))
	once, err := store.CountBits(ctx, filter.StoreKey("work"))
	require.NoError(t, err)

	for range 5 {
		require.NoError(t, filter.Add(ctx, "work", "99"))
	}
	again, err := store.CountBits(ctx, filter.StoreKey("work"))
	require.NoError(t, err)

	require.Equal(t, once, again)
	require.True(t, filter.MightContain(ctx, "work", "99"))
}

func TestFilter_EmptyKey(t *testing.T) {
	ctx := testcontext.New(t)

	ctrl := gomock.NewController(t)
	// an empty key never reaches the store
	store := mock_bitstore.NewMockStore(ctrl)

	filter, err := bloom.New(zaptest.NewLogger(t), store, testConfig())
	require.NoError(t, err)

	require.True(t, filter.MightContain(ctx, "blog", ""))

	ok, err := filter.Contains(ctx, "blog", "")
	require.NoError(t, err)
	require.True(t, ok)

	err = filter.Add(ctx, "blog", "")
	require.True(t, bloom.ErrEmptyKey.Has(err))
}

func TestFilter_Partitions(t *testing.T) {
	ctx := testcontext.New(t)

	filter, err := bloom.New(zaptest.NewLogger(t), memstore.New(), testConfig())
	require.NoError(t, err)

	require.NoError(t, filter.Add(ctx, "blog", "7"))
	require.True(t, filter.MightContain(ctx, "blog", "7"))
	require.False(t, filter.MightContain(ctx, "work", "7"))
	require.Equal(t, bitstore.Key("bloom_filter:blog"), filter.StoreKey("blog"))
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	if testing.Short() {
		t.Skip("inserts tens of thousands of keys")
	}
	ctx := testcontext.New(t)

	config := testConfig()
	filter, err := bloom.New(zaptest.NewLogger(t), memstore.New(), config)
	require.NoError(t, err)

	const probes = 200000
	rng := rand.New(rand.NewSource(1))

	inserted := 0
	for _, n := range []int{10000, 50000} {
		for ; inserted < n; inserted++ {
			require.NoError(t, filter.Add(ctx, "blog", "present-"+strconv.Itoa(inserted)))
		}

		falsePositives := 0
		for range probes {
			if filter.MightContain(ctx, "blog", "absent-"+strconv.FormatInt(rng.Int63(), 36)) {
				falsePositives++
			}
		}

		expected := bloom.FalsePositiveRate(uint64(config.Size), config.HashCount, float64(n))
		observed := float64(falsePositives) / probes
		t.Logf("n=%d expected=%.6f observed=%.6f", n, expected, observed)
		assert.LessOrEqual(t, observed, 2*expected+2.0/probes, "n=%d", n)
		if expected*probes >= 20 {
			// only meaningful once enough false positives are expected
			assert.GreaterOrEqual(t, observed, expected/2, "n=%d", n)
		}
	}
}

func TestFilter_FailOpen(t *testing.T) {
	ctx := testcontext.New(t)

	ctrl := gomock.NewController(t)
	store := mock_bitstore.NewMockStore(ctrl)

	filter, err := bloom.New(zaptest.NewLogger(t), store, testConfig())
	require.NoError(t, err)

	failure := errors.New("connection refused")
	store.EXPECT().GetBits(gomock.Any(), bitstore.Key("bloom_filter:blog"), gomock.Len(7)).Return(nil, failure).Times(2)
	store.EXPECT().SetBits(gomock.Any(), bitstore.Key("bloom_filter:blog"), gomock.Len(7)).Return(failure)
	store.EXPECT().CountBits(gomock.Any(), bitstore.Key("bloom_filter:blog")).Return(int64(0), failure)

	require.True(t, filter.MightContain(ctx, "blog", "1"))

	ok, err := filter.Contains(ctx, "blog", "1")
	require.ErrorIs(t, err, failure)
	require.True(t, ok)

	require.ErrorIs(t, filter.Add(ctx, "blog", "1"), failure)

	_, err = filter.Stats(ctx, "blog")
	require.ErrorIs(t, err, failure)
}

func TestFilter_Timeout(t *testing.T) {
	ctx := testcontext.New(t)

	ctrl := gomock.NewController(t)
	store := mock_bitstore.NewMockStore(ctrl)

	config := testConfig()
	config.Timeout = 10 * time.Millisecond
	filter, err := bloom.New(zaptest.NewLogger(t), store, config)
	require.NoError(t, err)

	block := func(ctx context.Context, _ bitstore.Key, _ []uint64) ([]bool, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	store.EXPECT().GetBits(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(block)

	start := time.Now()
	require.True(t, filter.MightContain(ctx, "blog", "1"))
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestFilter_FailOpenRedis(t *testing.T) {
	ctx := testcontext.New(t)

	server, err := testredis.Mini(ctx)
	require.NoError(t, err)
	defer ctx.Check(server.Close)

	client, err := redis.OpenClientFrom(ctx, server.URL(0))
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	filter, err := bloom.New(zaptest.NewLogger(t), client, testConfig())
	require.NoError(t, err)

	require.False(t, filter.MightContain(ctx, "blog", "1"))

	server.SetError("ERR server unavailable")
	require.True(t, filter.MightContain(ctx, "blog", "1"))
	require.Error(t, filter.Add(ctx, "blog", "1"))

	server.SetError("")
	require.False(t, filter.MightContain(ctx, "blog", "1"))
}

func TestFilter_SharedStore(t *testing.T) {
	ctx := testcontext.New(t)

	server, err := testredis.Start(ctx)
	require.NoError(t, err)
	defer ctx.Check(server.Close)

	open := func() *bloom.Filter {
		client, err := redis.OpenClientFrom(ctx, server.URL(1))
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		filter, err := bloom.New(zaptest.NewLogger(t), client, testConfig())
		require.NoError(t, err)
		return filter
	}

	instanceA, instanceB := open(), open()

	key := "99-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	require.False(t, instanceB.MightContain(ctx, "work", key))
	require.NoError(t, instanceA.Add(ctx, "work", key))
	require.True(t, instanceB.MightContain(ctx, "work", key))
}

func TestFilter_Stats(t *testing.T) {
	ctx := testcontext.New(t)

	filter, err := bloom.New(zaptest.NewLogger(t), memstore.New(), testConfig())
	require.NoError(t, err)

	stats, err := filter.Stats(ctx, "mind_map")
	require.NoError(t, err)
	diff := cmp.Diff(bloom.Stats{Filter: "mind_map", Size: 1000000, HashCount: 7}, stats)
	require.Zero(t, diff)

	for i := range 2000 {
		require.NoError(t, filter.Add(ctx, "mind_map", strconv.Itoa(i)))
	}

	stats, err = filter.Stats(ctx, "mind_map")
	require.NoError(t, err)
	require.Equal(t, "mind_map", stats.Filter)
	require.EqualValues(t, 1000000, stats.Size)
	require.Equal(t, 7, stats.HashCount)
	require.InDelta(t, 2000, stats.EstimatedKeys, 100)
	require.InDelta(t, float64(stats.SetBits)/1000000, stats.FillRatio, 1e-9)
	require.InEpsilon(t, bloom.FalsePositiveRate(1000000, 7, 2000), stats.FalsePositiveRate, 0.2)
}

func TestFilter_StatsSaturated(t *testing.T) {
	ctx := testcontext.New(t)

	config := testConfig()
	config.Size = 8
	config.HashCount = 1
	filter, err := bloom.New(zaptest.NewLogger(t), memstore.New(), config)
	require.NoError(t, err)

	for i := range 1000 {
		require.NoError(t, filter.Add(ctx, "tiny", strconv.Itoa(i)))
	}

	stats, err := filter.Stats(ctx, "tiny")
	require.NoError(t, err)
	require.EqualValues(t, 8, stats.SetBits)
	require.True(t, stats.Saturated)
	require.EqualValues(t, 1, stats.FalsePositiveRate)
	require.True(t, filter.MightContain(ctx, "tiny", "anything"))
}

func TestSizing(t *testing.T) {
	m, k := bloom.Estimate(100000, 0.01)
	require.Greater(t, m, uint(900000))
	require.Less(t, m, uint(1000000))
	require.EqualValues(t, 7, k)

	expected := bloom.FalsePositiveRate(uint64(m), int(k), 100000)
	require.InDelta(t, 0.01, expected, 0.002)

	reference := bloom.ReferenceFalsePositiveRate(m, k, 10000)
	require.Less(t, reference, 0.01)
}

func TestMeasureFalsePositiveRate(t *testing.T) {
	ctx := testcontext.New(t)

	m, k := bloom.Estimate(10000, 0.01)
	config := testConfig()
	config.Size = int64(m)
	config.HashCount = int(k)

	measured, err := bloom.MeasureFalsePositiveRate(ctx, config, 10000, 50000)
	require.NoError(t, err)
	require.Greater(t, measured, 0.005)
	require.Less(t, measured, 0.02)

	// crc32 positions are correlated across seeds, only check it runs
	config.Hash = string(bloom.CRC32)
	measured, err = bloom.MeasureFalsePositiveRate(ctx, config, 10000, 1000)
	require.NoError(t, err)
	require.GreaterOrEqual(t, measured, 0.0)
	require.LessOrEqual(t, measured, 1.0)

	config = testConfig()
	config.HashCount = 0
	_, err = bloom.MeasureFalsePositiveRate(ctx, config, 1, 1)
	require.True(t, bloom.Error.Has(err))

	_, err = bloom.MeasureFalsePositiveRate(ctx, testConfig(), 1, 0)
	require.True(t, bloom.Error.Has(err))
}
