// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package boltdb

import (
	"context"
	"encoding/binary"
	"math/bits"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	bolt "go.etcd.io/bbolt"

	"storj.io/bloomgate/private/bitstore"
)

var (
	// Error is the default boltdb errs class.
	Error = errs.Class("boltdb")

	mon = monkit.Package()
)

const (
	// fileMode sets permissions so owner can read and write.
	fileMode = 0600
	// defaultTimeout is how long to wait for the file lock.
	defaultTimeout = 1 * time.Second

	// chunkSize is the number of bytes in a stored page of bits.
	chunkSize = 512
	chunkBits = chunkSize * 8
)

// Client is a bit store backed by a bolt database file.
//
// Every bit array is a bucket. The bucket holds fixed size pages keyed by
// their big-endian page number, so sparse arrays only store the pages that
// have at least one bit set.
type Client struct {
	db   *bolt.DB
	Path string
}

var _ bitstore.Store = (*Client)(nil)

// New instantiates a new BoltDB client.
func New(path string) (*Client, error) {
	db, err := bolt.Open(path, fileMode, &bolt.Options{Timeout: defaultTimeout})
	if err != nil {
		return nil, Error.Wrap(err)
	}

	return &Client{
		db:   db,
		Path: path,
	}, nil
}

func pageKey(page uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], page)
	return key[:]
}

func locate(position uint64) (page uint64, offset int, mask byte) {
	page = position / chunkBits
	bit := position % chunkBits
	return page, int(bit / 8), byte(1) << (7 - bit%8)
}

// GetBits returns whether the bits at positions are set.
func (client *Client) GetBits(ctx context.Context, key bitstore.Key, positions []uint64) (_ []bool, err error) {
	defer mon.Task()(&ctx)(&err)
	if err := bitstore.CheckArgs(key, positions); err != nil {
		return nil, err
	}

	result := make([]bool, len(positions))
	err = client.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(key))
		if bucket == nil {
			return nil
		}
		for i, pos := range positions {
			page, offset, mask := locate(pos)
			chunk := bucket.Get(pageKey(page))
			if chunk == nil {
				continue
			}
			result[i] = chunk[offset]&mask != 0
		}
		return nil
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return result, nil
}

// SetBits sets the bits at positions to 1 in a single transaction.
func (client *Client) SetBits(ctx context.Context, key bitstore.Key, positions []uint64) (err error) {
	defer mon.Task()(&ctx)(&err)
	if err := bitstore.CheckArgs(key, positions); err != nil {
		return err
	}
	if len(positions) == 0 {
		return nil
	}

	// group positions by page so each page is read and written once
	pages := map[uint64][]uint64{}
	for _, pos := range positions {
		page := pos / chunkBits
		pages[page] = append(pages[page], pos)
	}

	return Error.Wrap(client.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(key))
		if err != nil {
			return err
		}
		for page, inPage := range pages {
			// values returned by Get are only valid for the lifetime of the
			// transaction and must not be modified
			chunk := make([]byte, chunkSize)
			copy(chunk, bucket.Get(pageKey(page)))

			for _, pos := range inPage {
				_, offset, mask := locate(pos)
				chunk[offset] |= mask
			}
			if err := bucket.Put(pageKey(page), chunk); err != nil {
				return err
			}
		}
		return nil
	}))
}

// CountBits returns the number of set bits stored under key.
func (client *Client) CountBits(ctx context.Context, key bitstore.Key) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return 0, bitstore.ErrEmptyKey.New("")
	}

	var count int64
	err = client.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(key))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, chunk []byte) error {
			for _, b := range chunk {
				count += int64(bits.OnesCount8(b))
			}
			return nil
		})
	})
	return count, Error.Wrap(err)
}

// Close closes a BoltDB client.
func (client *Client) Close() error {
	return Error.Wrap(client.db.Close())
}
