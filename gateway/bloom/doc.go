// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package bloom implements resource existence filters on top of a shared
// bitstore.Store.
//
// A filter answers "might this key exist" for a named partition, for example
// "blog". A negative answer is certain: every key passed to Add is reported as
// present afterwards, by this process and by every other process sharing the
// same store. A positive answer may be a false positive, with a probability of
// roughly (1 - e^(-kn/m))^k after n insertions.
//
// Lookups fail open. When the store is unavailable or slow the filter reports
// that the key might exist, so a broken store costs an extra round trip to the
// backend and never hides an existing resource.
package bloom
