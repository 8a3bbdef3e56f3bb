// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"storj.io/bloomgate/gateway/bloom"
	"storj.io/bloomgate/private/bitstore"
	"storj.io/common/process"
)

var (
	sizeCmd = &cobra.Command{
		Use:   "size",
		Short: "Estimate filter size and hash count for an expected number of resources",
		Args:  cobra.NoArgs,
		RunE:  cmdSize,
	}

	sizeItems    uint
	sizeFPRate   float64
	sizeMeasured bool
	sizeHash     string
	sizeProbes   int
)

func init() {
	sizeCmd.Flags().UintVar(&sizeItems, "items", 100000, "expected number of resources in the filter")
	sizeCmd.Flags().Float64Var(&sizeFPRate, "fp-rate", 0.01, "target false positive rate")
	sizeCmd.Flags().BoolVar(&sizeMeasured, "measure", false, "measure the false positive rate empirically")
	sizeCmd.Flags().StringVar(&sizeHash, "hash", string(bloom.XXH3), "hash algorithm used when measuring (xxh3, crc32)")
	sizeCmd.Flags().IntVar(&sizeProbes, "probes", 100000, "number of absent keys checked when measuring")
}

func cmdSize(cmd *cobra.Command, args []string) error {
	ctx, _ := process.Ctx(cmd)
	return printSize(ctx, os.Stdout)
}

func printSize(ctx context.Context, w io.Writer) error {
	if sizeItems == 0 {
		return errs.New("items must be positive")
	}
	if sizeFPRate <= 0 || sizeFPRate >= 1 {
		return errs.New("fp-rate must be between 0 and 1")
	}

	size, hashCount := bloom.Estimate(sizeItems, sizeFPRate)
	fmt.Fprintf(w, "bloom.size: %d\n", size)
	fmt.Fprintf(w, "bloom.hash-count: %d\n", hashCount)
	fmt.Fprintf(w, "expected false positive rate: %.6f\n", bloom.FalsePositiveRate(uint64(size), int(hashCount), float64(sizeItems)))

	if uint64(size) > bitstore.MaxPosition+1 {
		fmt.Fprintf(w, "warning: size exceeds the bit store limit of %d bits\n", uint64(bitstore.MaxPosition+1))
		return nil
	}

	if sizeMeasured {
		measured, err := bloom.MeasureFalsePositiveRate(ctx, bloom.Config{
			Size:      int64(size),
			HashCount: int(hashCount),
			Hash:      sizeHash,
		}, int(sizeItems), sizeProbes)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "measured false positive rate (%s): %.6f\n", sizeHash, measured)
		fmt.Fprintf(w, "reference filter false positive rate: %.6f\n", bloom.ReferenceFalsePositiveRate(size, hashCount, sizeItems))
	}
	return nil
}
