// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package bloom

import (
	"context"
	"math"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/bloomgate/private/bitstore"
)

var (
	// Error is the default error class for bloom filters.
	Error = errs.Class("bloom")

	// ErrEmptyKey is returned when adding an empty key.
	ErrEmptyKey = errs.Class("empty resource key")

	mon = monkit.Package()
)

// Filter tests and records resource keys in named filters held by a shared
// bit store.
//
// architecture: Service
type Filter struct {
	log    *zap.Logger
	store  bitstore.Store
	hashes *HashFamily
	config Config
}

// New creates a new Filter using store for the bit arrays.
func New(log *zap.Logger, store bitstore.Store, config Config) (*Filter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	hashes, err := NewHashFamily(HashAlgorithm(config.Hash), uint64(config.Size), config.HashCount)
	if err != nil {
		return nil, err
	}

	return &Filter{
		log:    log,
		store:  store,
		hashes: hashes,
		config: config,
	}, nil
}

// Hashes returns the hash family used to derive bit positions.
func (filter *Filter) Hashes() *HashFamily { return filter.hashes }

// StoreKey returns the bit store key of the named filter.
func (filter *Filter) StoreKey(name string) bitstore.Key {
	return bitstore.Key(filter.config.Prefix + name)
}

func (filter *Filter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if filter.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, filter.config.Timeout)
}

// MightContain returns false only when key was certainly never added to the
// named filter.
//
// An empty key, a store failure or an expired deadline all report true.
func (filter *Filter) MightContain(ctx context.Context, name, key string) bool {
	if key == "" {
		mon.Event("bloom_empty_key")
		return true
	}

	ok, err := filter.Contains(ctx, name, key)
	if err != nil {
		mon.Event("bloom_fail_open")
		filter.log.Warn("filter lookup failed, assuming the resource exists",
			zap.String("filter", name),
			zap.String("key", key),
			zap.Error(err))
		return true
	}
	return ok
}

// Contains is like MightContain, but returns the store error instead of
// failing open.
func (filter *Filter) Contains(ctx context.Context, name, key string) (_ bool, err error) {
	defer mon.Task()(&ctx)(&err)
	if key == "" {
		return true, nil
	}

	ctx, cancel := filter.withTimeout(ctx)
	defer cancel()

	bits, err := filter.store.GetBits(ctx, filter.StoreKey(name), filter.hashes.Positions(key))
	if err != nil {
		return true, Error.Wrap(err)
	}
	for _, set := range bits {
		if !set {
			mon.Meter("bloom_negative").Mark(1)
			return false, nil
		}
	}
	mon.Meter("bloom_positive").Mark(1)
	return true, nil
}

// Add records key in the named filter. Adding the same key again has no
// effect.
func (filter *Filter) Add(ctx context.Context, name, key string) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key == "" {
		return ErrEmptyKey.New("filter %q", name)
	}

	ctx, cancel := filter.withTimeout(ctx)
	defer cancel()

	return Error.Wrap(filter.store.SetBits(ctx, filter.StoreKey(name), filter.hashes.Positions(key)))
}

// Stats describes the fill state of a filter.
type Stats struct {
	Filter    string `json:"filter"`
	Size      int64  `json:"size"`
	HashCount int    `json:"hashCount"`
	SetBits   int64  `json:"setBits"`

	// Saturated is set when every bit is set and the key count can no
	// longer be estimated.
	Saturated         bool    `json:"saturated"`
	FillRatio         float64 `json:"fillRatio"`
	EstimatedKeys     float64 `json:"estimatedKeys"`
	FalsePositiveRate float64 `json:"falsePositiveRate"`
}

// Stats returns the fill state of the named filter.
func (filter *Filter) Stats(ctx context.Context, name string) (_ Stats, err error) {
	defer mon.Task()(&ctx)(&err)

	ctx, cancel := filter.withTimeout(ctx)
	defer cancel()

	setBits, err := filter.store.CountBits(ctx, filter.StoreKey(name))
	if err != nil {
		return Stats{}, Error.Wrap(err)
	}

	m, k := float64(filter.config.Size), float64(filter.config.HashCount)
	stats := Stats{
		Filter:    name,
		Size:      filter.config.Size,
		HashCount: filter.config.HashCount,
		SetBits:   setBits,
		FillRatio: float64(setBits) / m,
	}

	if setBits >= filter.config.Size {
		stats.Saturated = true
		stats.FalsePositiveRate = 1
		return stats, nil
	}

	// Swamidass & Baldi estimate of the number of inserted keys.
	stats.EstimatedKeys = -m / k * math.Log1p(-stats.FillRatio)
	stats.FalsePositiveRate = FalsePositiveRate(uint64(filter.config.Size), filter.config.HashCount, stats.EstimatedKeys)
	return stats, nil
}
