// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package gateway

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"storj.io/bloomgate/private/bitstore"
	"storj.io/bloomgate/private/bitstore/boltdb"
	"storj.io/bloomgate/private/bitstore/memstore"
	"storj.io/bloomgate/private/bitstore/redis"
	"storj.io/bloomgate/private/bitstore/storelogger"
)

// BitStoreConfig contains configurable values for the bit store.
type BitStoreConfig struct {
	Backend string `help:"where filters are stored: memory:, redis://host:port?db=N or bolt://path/to/filters.db" default:"redis://127.0.0.1:6379?db=0" devDefault:"memory:" testDefault:"memory:"`
	Debug   bool   `help:"log every bit store operation" default:"false"`
}

// OpenBitStore opens the bit store of the type specified in config.
func OpenBitStore(ctx context.Context, log *zap.Logger, config BitStoreConfig) (store bitstore.Store, err error) {
	parts := strings.SplitN(config.Backend, ":", 2)
	var backendType string
	if len(parts) == 0 || parts[0] == "" {
		backendType = "memory"
	} else {
		backendType = parts[0]
	}

	switch backendType {
	case "memory":
		store = memstore.New()
	case "redis", "rediss":
		store, err = redis.OpenClientFrom(ctx, config.Backend)
	case "bolt":
		path := strings.TrimPrefix(config.Backend, "bolt://")
		if path == "" || path == config.Backend {
			return nil, Error.New("invalid bolt backend %q, expected bolt://path", config.Backend)
		}
		store, err = boltdb.New(path)
	default:
		return nil, Error.New("unrecognized bit store backend specifier %q", backendType)
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}

	if config.Debug {
		store = storelogger.New(log.Named("bitstore"), store)
	}
	return store, nil
}
