// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package bloom

import (
	"context"
	"math"
	"strconv"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/zap"

	"storj.io/bloomgate/private/bitstore/memstore"
)

// FalsePositiveRate returns (1 - e^(-kn/m))^k, the expected false positive
// probability of a filter with m bits and k hashes after n insertions.
func FalsePositiveRate(m uint64, k int, n float64) float64 {
	if m == 0 {
		return 1
	}
	return math.Pow(1-math.Exp(-float64(k)*n/float64(m)), float64(k))
}

// Estimate returns the filter size and hash count needed to keep the false
// positive rate at p for n keys.
func Estimate(n uint, p float64) (size uint, hashCount uint) {
	return bitsbloom.EstimateParameters(n, p)
}

// MeasureFalsePositiveRate adds n synthetic keys to an in-memory filter built
// from config, then checks the given number of keys that were never added and
// returns the share reported as present.
//
// It allocates config.Size bits, so it is meant for capacity planning and not
// for the request path.
func MeasureFalsePositiveRate(ctx context.Context, config Config, n, probes int) (_ float64, err error) {
	if probes <= 0 {
		return 0, Error.New("probes must be positive")
	}
	config.Timeout = 0

	store := memstore.New()
	filter, err := New(zap.NewNop(), store, config)
	if err != nil {
		return 0, err
	}
	defer func() { _ = store.Close() }()

	const name = "measure"
	for i := range n {
		if err := filter.Add(ctx, name, "key-"+strconv.Itoa(i)); err != nil {
			return 0, err
		}
	}

	positives := 0
	for i := range probes {
		ok, err := filter.Contains(ctx, name, "probe-"+strconv.Itoa(i))
		if err != nil {
			return 0, err
		}
		if ok {
			positives++
		}
	}
	return float64(positives) / float64(probes), nil
}

// ReferenceFalsePositiveRate measures the false positive rate of a
// bits-and-blooms filter with m bits and k hashes after n insertions. It uses
// double hashing instead of a HashFamily, so it serves as a baseline only.
func ReferenceFalsePositiveRate(m, k, n uint) float64 {
	return bitsbloom.EstimateFalsePositiveRate(m, k, n)
}
