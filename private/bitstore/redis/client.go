// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"storj.io/bloomgate/private/bitstore"
)

var (
	// Error is a redis error.
	Error = errs.Class("redis")

	mon = monkit.Package()
)

// Client is the entrypoint into Redis.
//
// Bit arrays are stored as redis strings and manipulated with GETBIT, SETBIT
// and BITCOUNT, so every process talking to the same database sees the same
// arrays.
type Client struct {
	db *redis.Client
}

var _ bitstore.Store = (*Client)(nil)

// OpenClient returns a configured Client instance, verifying a successful connection to redis.
func OpenClient(ctx context.Context, address, password string, db int) (*Client, error) {
	return open(ctx, &redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// OpenClientFrom returns a configured Client instance from a redis:// address,
// verifying a successful connection to redis.
func OpenClientFrom(ctx context.Context, address string) (*Client, error) {
	opts, err := redis.ParseURL(address)
	if err != nil {
		return nil, Error.New("invalid redis URL: %v", err)
	}
	return open(ctx, opts)
}

func open(ctx context.Context, opts *redis.Options) (*Client, error) {
	client := &Client{db: redis.NewClient(opts)}

	// ping here to verify we are able to connect to redis with the initialized client.
	if err := client.db.Ping(ctx).Err(); err != nil {
		return nil, errs.Combine(Error.New("ping failed: %v", err), client.db.Close())
	}

	return client, nil
}

// GetBits returns whether the bits at positions are set.
// All reads are sent in a single pipeline.
func (client *Client) GetBits(ctx context.Context, key bitstore.Key, positions []uint64) (_ []bool, err error) {
	defer mon.Task()(&ctx)(&err)
	if err := bitstore.CheckArgs(key, positions); err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return []bool{}, nil
	}

	cmds := make([]*redis.IntCmd, len(positions))
	_, err = client.db.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, pos := range positions {
			cmds[i] = pipe.GetBit(ctx, key.String(), int64(pos))
		}
		return nil
	})
	if err != nil {
		return nil, Error.New("getbit error: %v", err)
	}

	bits := make([]bool, len(positions))
	for i, cmd := range cmds {
		bits[i] = cmd.Val() == 1
	}
	return bits, nil
}

// SetBits sets the bits at positions to 1.
// All writes are sent in a single pipeline.
func (client *Client) SetBits(ctx context.Context, key bitstore.Key, positions []uint64) (err error) {
	defer mon.Task()(&ctx)(&err)
	if err := bitstore.CheckArgs(key, positions); err != nil {
		return err
	}
	if len(positions) == 0 {
		return nil
	}

	_, err = client.db.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, pos := range positions {
			pipe.SetBit(ctx, key.String(), int64(pos), 1)
		}
		return nil
	})
	if err != nil {
		return Error.New("setbit error: %v", err)
	}
	return nil
}

// CountBits returns the number of set bits stored under key.
func (client *Client) CountBits(ctx context.Context, key bitstore.Key) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return 0, bitstore.ErrEmptyKey.New("")
	}
	count, err := client.db.BitCount(ctx, key.String(), nil).Result()
	if err != nil {
		return 0, Error.New("bitcount error: %v", err)
	}
	return count, nil
}

// Ping checks whether the redis connection is alive.
func (client *Client) Ping(ctx context.Context) error {
	return Error.Wrap(client.db.Ping(ctx).Err())
}

// FlushDB deletes all keys in the currently selected DB.
func (client *Client) FlushDB(ctx context.Context) error {
	return Error.Wrap(client.db.FlushDB(ctx).Err())
}

// Close closes a redis client.
func (client *Client) Close() error {
	return Error.Wrap(client.db.Close())
}
