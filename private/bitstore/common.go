// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package bitstore

import (
	"context"

	"github.com/zeebo/errs"
)

var (
	// ErrEmptyKey is returned when an empty key is used.
	ErrEmptyKey = errs.Class("empty key")

	// ErrOutOfRange is returned when a bit position exceeds MaxPosition.
	ErrOutOfRange = errs.Class("position out of range")
)

// MaxPosition is the largest bit position a Store must accept.
// It matches the largest offset accepted by redis SETBIT.
const MaxPosition = 1<<32 - 1

// Key is the name of a bit array in a `Store`.
type Key string

// IsZero returns true if the key is empty.
func (key Key) IsZero() bool { return len(key) == 0 }

// String implements the Stringer interface.
func (key Key) String() string { return string(key) }

//go:generate mockgen -destination=mock_bitstore/store.go -package=mock_bitstore storj.io/bloomgate/private/bitstore Store

// Store describes bit array stores like redis and boltdb.
//
// Bit arrays are created implicitly by the first SetBits call and bits are
// never cleared. Unset and missing bits read as false.
type Store interface {
	// GetBits returns, for every position, whether that bit is set.
	GetBits(ctx context.Context, key Key, positions []uint64) ([]bool, error)
	// SetBits sets the bit at every position to 1.
	SetBits(ctx context.Context, key Key, positions []uint64) error
	// CountBits returns the number of set bits.
	CountBits(ctx context.Context, key Key) (int64, error)
	// Close closes the store.
	Close() error
}

// GetBit returns whether a single bit is set.
func GetBit(ctx context.Context, store Store, key Key, position uint64) (bool, error) {
	bits, err := store.GetBits(ctx, key, []uint64{position})
	if err != nil {
		return false, err
	}
	return bits[0], nil
}

// SetBit sets a single bit.
func SetBit(ctx context.Context, store Store, key Key, position uint64) error {
	return store.SetBits(ctx, key, []uint64{position})
}

// CheckArgs validates arguments common to all Store operations.
func CheckArgs(key Key, positions []uint64) error {
	if key.IsZero() {
		return ErrEmptyKey.New("")
	}
	for _, pos := range positions {
		if pos > MaxPosition {
			return ErrOutOfRange.New("%d", pos)
		}
	}
	return nil
}
