// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"storj.io/bloomgate/gateway/maintenance"
	"storj.io/common/process"
)

// Backfill is the configuration for seeding a filter from existing ids.
type Backfill struct {
	Filters

	Workers   int  `help:"number of concurrent batches" default:"8"`
	BatchSize int  `help:"number of ids published per batch" default:"500"`
	Progress  bool `help:"show a progress bar" default:"true"`
}

var (
	backfillCmd = &cobra.Command{
		Use:   "backfill <type> [file]",
		Short: "Seed a filter with ids read from a file or stdin, one per line",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  cmdBackfill,
	}

	backfillCfg Backfill
)

func cmdBackfill(cmd *cobra.Command, args []string) (err error) {
	ctx, _ := process.Ctx(cmd)

	if backfillCfg.Workers < 1 || backfillCfg.BatchSize < 1 {
		return errs.New("workers and batch size must be positive")
	}

	input := io.Reader(os.Stdin)
	if len(args) > 1 && args[1] != "-" {
		var file *os.File
		file, err = os.Open(args[1])
		if err != nil {
			return err
		}
		defer func() { err = errs.Combine(err, file.Close()) }()
		input = file
	}

	ids, err := readIDs(input)
	if err != nil {
		return err
	}

	filter, table, closeStore, err := openFilters(cmd, backfillCfg.Filters)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, closeStore()) }()

	service := maintenance.NewService(zap.L().Named("maintenance"), filter, table)

	var bar *pb.ProgressBar
	if backfillCfg.Progress {
		bar = pb.New(len(ids))
		bar.SetWriter(os.Stderr)
		bar.Start()
		defer bar.Finish()
	}

	added, err := backfill(ctx, service, args[0], ids, backfillCfg.Workers, backfillCfg.BatchSize, func(n int) {
		if bar != nil {
			bar.Add(n)
		}
	})
	if err != nil {
		return err
	}

	zap.L().Info("backfill finished",
		zap.String("type", args[0]),
		zap.String("filter", table.FilterFor(args[0])),
		zap.Int("read", len(ids)),
		zap.Int64("added", added))
	if added != int64(len(ids)) {
		return errs.New("added %d of %d resources", added, len(ids))
	}
	return nil
}

// readIDs returns the non-empty trimmed lines of r.
func readIDs(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.New("reading ids: %v", err)
	}
	return ids, nil
}

// backfill publishes ids in batches with at most workers batches in flight.
// progress is called with the size of every finished batch.
func backfill(ctx context.Context, service *maintenance.Service, resourceType string, ids []string, workers, batchSize int, progress func(int)) (added int64, err error) {
	var total atomic.Int64
	limiter := semaphore.NewWeighted(int64(workers))
	var group errgroup.Group

	for start := 0; start < len(ids); start += batchSize {
		batch := ids[start:min(start+batchSize, len(ids))]

		if err := limiter.Acquire(ctx, 1); err != nil {
			_ = group.Wait()
			return total.Load(), fmt.Errorf("backfill interrupted: %w", err)
		}
		group.Go(func() error {
			defer limiter.Release(1)
			total.Add(int64(service.PublishResourceKeys(ctx, resourceType, batch)))
			progress(len(batch))
			return nil
		})
	}

	err = group.Wait()
	return total.Load(), err
}
