// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package maintenance

import (
	"go.uber.org/zap"

	"storj.io/bloomgate/gateway/routes"
)

// NewPublisher returns the publisher selected by config.Mode. The queue is
// nil in inline mode; otherwise the caller must Run and Close it.
func NewPublisher(log *zap.Logger, adder Adder, table *routes.Table, config Config) (Publisher, *Queue, error) {
	service := NewService(log, adder, table)
	switch config.Mode {
	case ModeInline:
		return service, nil, nil
	case ModeAsync, "":
		queue := NewQueue(log.Named("queue"), service, config)
		return queue, queue, nil
	default:
		return nil, nil, Error.New("unknown maintenance mode %q", config.Mode)
	}
}
