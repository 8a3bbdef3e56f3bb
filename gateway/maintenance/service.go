// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package maintenance keeps resource existence filters in sync with newly
// created resources.
package maintenance

import (
	"context"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/bloomgate/gateway/routes"
)

var (
	// Error is the default error class for the maintenance package.
	Error = errs.Class("maintenance")

	mon = monkit.Package()
)

// Publisher is notified after a resource has been durably created.
//
// Publishing is fire and forget: failures are logged and never reported to
// the caller, so a broken filter cannot fail the creation workflow.
type Publisher interface {
	PublishResourceKey(ctx context.Context, resourceType, id string)
}

// Adder records keys in named filters.
type Adder interface {
	Add(ctx context.Context, filter, key string) error
}

// Config contains configurable values for filter maintenance.
type Config struct {
	Mode      string `help:"how new resources are added to filters (inline, async)" default:"async"`
	Workers   int    `help:"number of workers adding queued resources" default:"4"`
	QueueSize int    `help:"maximum number of queued resources, further resources are dropped" default:"10000" testDefault:"100"`
}

const (
	// ModeInline adds keys on the publishing goroutine.
	ModeInline = "inline"
	// ModeAsync queues keys for background workers.
	ModeAsync = "async"
)

// Service adds published resources to the filter selected by their type.
//
// architecture: Service
type Service struct {
	log   *zap.Logger
	adder Adder
	table *routes.Table
}

var _ Publisher = (*Service)(nil)

// NewService creates a new inline publisher.
func NewService(log *zap.Logger, adder Adder, table *routes.Table) *Service {
	return &Service{
		log:   log,
		adder: adder,
		table: table,
	}
}

// PublishResourceKey adds id to the filter of resourceType.
func (service *Service) PublishResourceKey(ctx context.Context, resourceType, id string) {
	_ = service.publish(ctx, resourceType, id)
}

// PublishResourceKeys adds every id to the filter of resourceType and returns
// how many were added.
func (service *Service) PublishResourceKeys(ctx context.Context, resourceType string, ids []string) (added int) {
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if service.publish(ctx, resourceType, id) {
			added++
		}
	}
	return added
}

func (service *Service) publish(ctx context.Context, resourceType, id string) bool {
	filter := service.table.FilterFor(resourceType)
	if err := service.adder.Add(ctx, filter, id); err != nil {
		mon.Event("maintenance_add_failed")
		service.log.Warn("failed to add resource to filter",
			zap.String("type", resourceType),
			zap.String("filter", filter),
			zap.String("id", id),
			zap.Error(err))
		return false
	}
	mon.Event("maintenance_added")
	return true
}
