// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package bitstore defines the interface for shared bit array storage.
//
// Implementations live in subpackages: redis for arrays shared between many
// gateway processes, boltdb for a single host that needs to survive restarts
// and memstore for a single process.
package bitstore
