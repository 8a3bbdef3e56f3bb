// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package storelogger

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"

	"storj.io/bloomgate/private/bitstore"
)

var mon = monkit.Package()

var id atomic.Int64

// Logger implements a zap.Logger for bitstore.Store.
type Logger struct {
	log   *zap.Logger
	store bitstore.Store
}

var _ bitstore.Store = (*Logger)(nil)

// New creates a new Logger with log and store.
func New(log *zap.Logger, store bitstore.Store) *Logger {
	name := strconv.FormatInt(id.Add(1), 10)
	return &Logger{log.Named(name), store}
}

// GetBits reads bits from the store.
func (store *Logger) GetBits(ctx context.Context, key bitstore.Key, positions []uint64) (_ []bool, err error) {
	defer mon.Task()(&ctx)(&err)
	bits, err := store.store.GetBits(ctx, key, positions)
	store.log.Debug("GetBits",
		zap.Stringer("key", key),
		zap.Uint64s("positions", positions),
		zap.Bools("bits", bits),
		zap.Error(err))
	return bits, err
}

// SetBits writes bits to the store.
func (store *Logger) SetBits(ctx context.Context, key bitstore.Key, positions []uint64) (err error) {
	defer mon.Task()(&ctx)(&err)
	err = store.store.SetBits(ctx, key, positions)
	store.log.Debug("SetBits",
		zap.Stringer("key", key),
		zap.Uint64s("positions", positions),
		zap.Error(err))
	return err
}

// CountBits counts bits in the store.
func (store *Logger) CountBits(ctx context.Context, key bitstore.Key) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	count, err := store.store.CountBits(ctx, key)
	store.log.Debug("CountBits", zap.Stringer("key", key), zap.Int64("count", count), zap.Error(err))
	return count, err
}

// Close closes the store.
func (store *Logger) Close() error {
	store.log.Debug("Close")
	return store.store.Close()
}
