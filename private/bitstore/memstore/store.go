// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package memstore implements bitstore.Store in process memory.
package memstore

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/spacemonkeygo/monkit/v3"

	"storj.io/bloomgate/private/bitstore"
)

var mon = monkit.Package()

// Store is an in-memory bit store.
//
// It does not coordinate with other processes, so it should only be used by a
// single gateway or in tests. Every array grows on demand up to the highest
// position set.
type Store struct {
	arrays *xsync.MapOf[bitstore.Key, *array]
}

type array struct {
	mu   sync.RWMutex
	bits *bitset.BitSet
}

var _ bitstore.Store = (*Store)(nil)

// New creates a new in-memory bit store.
func New() *Store {
	return &Store{
		arrays: xsync.NewMapOf[bitstore.Key, *array](),
	}
}

// GetBits returns whether the bits at positions are set.
func (store *Store) GetBits(ctx context.Context, key bitstore.Key, positions []uint64) (_ []bool, err error) {
	defer mon.Task()(&ctx)(&err)
	if err := bitstore.CheckArgs(key, positions); err != nil {
		return nil, err
	}

	result := make([]bool, len(positions))
	arr, ok := store.arrays.Load(key)
	if !ok {
		return result, nil
	}

	arr.mu.RLock()
	defer arr.mu.RUnlock()
	for i, pos := range positions {
		result[i] = arr.bits.Test(uint(pos))
	}
	return result, nil
}

// SetBits sets the bits at positions to 1.
func (store *Store) SetBits(ctx context.Context, key bitstore.Key, positions []uint64) (err error) {
	defer mon.Task()(&ctx)(&err)
	if err := bitstore.CheckArgs(key, positions); err != nil {
		return err
	}
	if len(positions) == 0 {
		return nil
	}

	arr, _ := store.arrays.LoadOrCompute(key, func() *array {
		return &array{bits: bitset.New(0)}
	})

	arr.mu.Lock()
	defer arr.mu.Unlock()
	for _, pos := range positions {
		arr.bits.Set(uint(pos))
	}
	return nil
}

// CountBits returns the number of set bits stored under key.
func (store *Store) CountBits(ctx context.Context, key bitstore.Key) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return 0, bitstore.ErrEmptyKey.New("")
	}

	arr, ok := store.arrays.Load(key)
	if !ok {
		return 0, nil
	}

	arr.mu.RLock()
	defer arr.mu.RUnlock()
	return int64(arr.bits.Count()), nil
}

// Keys returns the names of all arrays that have been written to.
func (store *Store) Keys() []bitstore.Key {
	keys := make([]bitstore.Key, 0, store.arrays.Size())
	store.arrays.Range(func(key bitstore.Key, _ *array) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Close matches the bitstore.Store interface.
func (store *Store) Close() error { return nil }
