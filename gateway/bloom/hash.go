// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package bloom

import (
	"hash/crc32"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// HashAlgorithm names the function used to derive bit positions.
type HashAlgorithm string

const (
	// XXH3 is the default hash algorithm.
	XXH3 HashAlgorithm = "xxh3"
	// CRC32 is the IEEE CRC-32. It produces the same positions as filters
	// populated with crc32(key . seed) % size.
	CRC32 HashAlgorithm = "crc32"
)

// HashFunc is a 64-bit hash of a byte slice.
type HashFunc func(data []byte) uint64

func crc32Hash(data []byte) uint64 { return uint64(crc32.ChecksumIEEE(data)) }

// Func returns the hash function for the algorithm.
func (algorithm HashAlgorithm) Func() (HashFunc, error) {
	switch HashAlgorithm(strings.ToLower(string(algorithm))) {
	case XXH3, "":
		return xxh3.Hash, nil
	case CRC32:
		return crc32Hash, nil
	default:
		return nil, Error.New("unknown hash algorithm %q", string(algorithm))
	}
}

// HashFamily maps a key to k bit positions in [0, m).
//
// Position i is hash(key + decimal(i)) mod m. Positions are stable across
// processes and restarts, so independent gateways agree on them.
type HashFamily struct {
	hash  HashFunc
	size  uint64
	count int
}

// NewHashFamily returns a family of count positions in [0, size).
func NewHashFamily(algorithm HashAlgorithm, size uint64, count int) (*HashFamily, error) {
	hash, err := algorithm.Func()
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, Error.New("size must be positive")
	}
	if count < 1 {
		return nil, Error.New("hash count must be positive")
	}
	return &HashFamily{hash: hash, size: size, count: count}, nil
}

// Size returns m.
func (family *HashFamily) Size() uint64 { return family.size }

// Count returns k.
func (family *HashFamily) Count() int { return family.count }

// Position returns the bit position of key for seed.
func (family *HashFamily) Position(key string, seed int) uint64 {
	buf := make([]byte, 0, len(key)+4)
	buf = append(buf, key...)
	buf = strconv.AppendInt(buf, int64(seed), 10)
	return family.hash(buf) % family.size
}

// Positions returns the positions of key for seeds 0..k-1.
func (family *HashFamily) Positions(key string) []uint64 {
	positions := make([]uint64, family.count)

	buf := make([]byte, 0, len(key)+4)
	buf = append(buf, key...)
	for seed := range positions {
		buf = strconv.AppendInt(buf[:len(key)], int64(seed), 10)
		positions[seed] = family.hash(buf) % family.size
	}
	return positions
}
