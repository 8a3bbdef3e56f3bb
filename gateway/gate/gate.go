// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package gate implements the HTTP middleware that answers lookups for
// resources that certainly do not exist without reaching the backend.
package gate

import (
	"context"
	"net/http"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"

	"storj.io/bloomgate/gateway/routes"
)

var mon = monkit.Package()

// Checker reports whether a key might be present in a filter.
// Implementations must fail open.
type Checker interface {
	MightContain(ctx context.Context, filter, key string) bool
}

// Gate short-circuits reads of resources missing from their filter.
type Gate struct {
	log     *zap.Logger
	checker Checker
	table   *routes.Table
}

// New creates a new Gate.
func New(log *zap.Logger, checker Checker, table *routes.Table) *Gate {
	return &Gate{
		log:     log,
		checker: checker,
		table:   table,
	}
}

// Middleware wraps next so that GET and HEAD requests for resources that were
// never published are answered with 404. Everything else reaches next
// unchanged.
func (gate *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !gate.Allow(r) {
			writeNotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Allow returns false when r should be answered with 404.
func (gate *Gate) Allow(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return true
	}

	filter, key, ok := gate.table.Classify(r.URL.Path)
	if !ok {
		mon.Event("gate_bypass")
		return true
	}
	if key == "" {
		mon.Event("gate_empty_key")
		return true
	}

	if !gate.checker.MightContain(r.Context(), filter, key) {
		mon.Event("gate_short_circuit")
		gate.log.Debug("resource not in filter",
			zap.String("filter", filter),
			zap.String("key", key),
			zap.String("path", r.URL.Path))
		return false
	}

	mon.Event("gate_forward")
	return true
}
