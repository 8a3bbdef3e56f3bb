// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package bloom

import (
	"time"

	"storj.io/bloomgate/private/bitstore"
)

// Config contains configurable values for resource existence filters.
type Config struct {
	Size      int64         `help:"number of bits in every filter" default:"1000000"`
	HashCount int           `help:"number of hash functions applied to every key" default:"7"`
	Prefix    string        `help:"prefix of the bit store key holding a filter" default:"bloom_filter:"`
	Hash      string        `help:"hash algorithm used to derive bit positions (xxh3, crc32)" default:"xxh3"`
	Timeout   time.Duration `help:"how long to wait for the bit store before failing open" default:"250ms" testDefault:"5s"`
}

// MaxHashCount is the largest supported number of hash functions.
const MaxHashCount = 32

// Validate checks that the configuration describes a usable filter.
func (config Config) Validate() error {
	if config.Size <= 0 {
		return Error.New("size must be positive, got %d", config.Size)
	}
	if uint64(config.Size) > bitstore.MaxPosition+1 {
		return Error.New("size must be at most %d, got %d", uint64(bitstore.MaxPosition+1), config.Size)
	}
	if config.HashCount < 1 || config.HashCount > MaxHashCount {
		return Error.New("hash count must be between 1 and %d, got %d", MaxHashCount, config.HashCount)
	}
	if _, err := HashAlgorithm(config.Hash).Func(); err != nil {
		return err
	}
	return nil
}
