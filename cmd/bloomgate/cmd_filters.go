// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/bloomgate/gateway/bloom"
	"storj.io/bloomgate/gateway/maintenance"
	"storj.io/common/process"
)

var (
	checkCmd = &cobra.Command{
		Use:   "check <type> <id>",
		Short: "Check whether a resource might exist",
		Args:  cobra.ExactArgs(2),
		RunE:  cmdCheck,
	}
	publishCmd = &cobra.Command{
		Use:   "publish <type> <id>...",
		Short: "Add resources to their filter",
		Args:  cobra.MinimumNArgs(2),
		RunE:  cmdPublish,
	}
	statsCmd = &cobra.Command{
		Use:   "stats [filter]...",
		Short: "Print fill statistics of filters",
		RunE:  cmdStats,
	}

	checkCfg   Filters
	publishCfg Filters
	statsCfg   Filters
)

func cmdCheck(cmd *cobra.Command, args []string) (err error) {
	ctx, _ := process.Ctx(cmd)

	filter, table, closeStore, err := openFilters(cmd, checkCfg)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, closeStore()) }()

	name := table.FilterFor(args[0])
	exists, err := filter.Contains(ctx, name, args[1])
	if err != nil {
		return err
	}

	if exists {
		fmt.Printf("%s %s might exist (filter %s)\n", args[0], args[1], name)
	} else {
		fmt.Printf("%s %s does not exist (filter %s)\n", args[0], args[1], name)
	}
	return nil
}

func cmdPublish(cmd *cobra.Command, args []string) (err error) {
	ctx, _ := process.Ctx(cmd)

	filter, table, closeStore, err := openFilters(cmd, publishCfg)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, closeStore()) }()

	service := maintenance.NewService(zap.L().Named("maintenance"), filter, table)
	ids := args[1:]
	added := service.PublishResourceKeys(ctx, args[0], ids)
	if added != len(ids) {
		return errs.New("added %d of %d resources", added, len(ids))
	}

	fmt.Printf("added %d resources to filter %s\n", added, table.FilterFor(args[0]))
	return nil
}

func cmdStats(cmd *cobra.Command, args []string) (err error) {
	ctx, _ := process.Ctx(cmd)

	filter, table, closeStore, err := openFilters(cmd, statsCfg)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, closeStore()) }()

	names := args
	if len(names) == 0 {
		names = table.Filters()
	}

	stats := make([]bloom.Stats, 0, len(names))
	for _, name := range names {
		s, err := filter.Stats(ctx, name)
		if err != nil {
			return err
		}
		stats = append(stats, s)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(stats)
}
