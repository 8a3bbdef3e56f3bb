// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/bloomgate/gateway"
	"storj.io/bloomgate/gateway/bloom"
	"storj.io/bloomgate/gateway/routes"
	"storj.io/common/cfgstruct"
	"storj.io/common/fpath"
	"storj.io/common/process"
)

// Filters is the configuration shared by the commands that work directly on
// the filters without starting the gateway.
type Filters struct {
	Bloom    bloom.Config
	BitStore gateway.BitStoreConfig
	Routes   routes.Config
}

var (
	rootCmd = &cobra.Command{
		Use:   "bloomgate",
		Short: "Resource existence gateway",
	}
	setupCmd = &cobra.Command{
		Use:         "setup",
		Short:       "Create config files",
		RunE:        cmdSetup,
		Annotations: map[string]string{"type": "setup"},
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the gateway",
		RunE:  cmdRun,
	}

	runCfg   gateway.Config
	setupCfg gateway.Config

	confDir string
)

func init() {
	defaultConfDir := fpath.ApplicationDir("storj", "bloomgate")
	cfgstruct.SetupFlag(zap.L(), rootCmd, &confDir, "config-dir", defaultConfDir, "main directory for bloomgate configuration")
	defaults := cfgstruct.DefaultsFlag(rootCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(sizeCmd)
	process.Bind(runCmd, &runCfg, defaults, cfgstruct.ConfDir(confDir))
	process.Bind(setupCmd, &setupCfg, defaults, cfgstruct.ConfDir(confDir), cfgstruct.SetupMode())
	process.Bind(checkCmd, &checkCfg, defaults, cfgstruct.ConfDir(confDir))
	process.Bind(publishCmd, &publishCfg, defaults, cfgstruct.ConfDir(confDir))
	process.Bind(backfillCmd, &backfillCfg, defaults, cfgstruct.ConfDir(confDir))
	process.Bind(statsCmd, &statsCfg, defaults, cfgstruct.ConfDir(confDir))
}

func cmdSetup(cmd *cobra.Command, args []string) (err error) {
	setupDir, err := filepath.Abs(confDir)
	if err != nil {
		return err
	}

	valid, _ := fpath.IsValidSetupDir(setupDir)
	if !valid {
		return fmt.Errorf("bloomgate configuration already exists (%v)", setupDir)
	}

	err = os.MkdirAll(setupDir, 0700)
	if err != nil {
		return err
	}

	if err := setupCfg.Verify(); err != nil {
		return err
	}

	return process.SaveConfig(cmd, filepath.Join(setupDir, "config.yaml"))
}

func cmdRun(cmd *cobra.Command, args []string) (err error) {
	ctx, _ := process.Ctx(cmd)
	log := zap.L()

	store, err := gateway.OpenBitStore(ctx, log, runCfg.BitStore)
	if err != nil {
		return errs.New("Error opening bit store: %+v", err)
	}

	peer, err := gateway.New(log, store, runCfg)
	if err != nil {
		return errs.New("Error creating gateway: %+v", err)
	}

	runError := peer.Run(ctx)
	closeError := peer.Close()
	return errs.Combine(runError, closeError)
}

// openFilters opens the bit store and the route table described by config.
// The returned close function releases the bit store.
func openFilters(cmd *cobra.Command, config Filters) (*bloom.Filter, *routes.Table, func() error, error) {
	ctx, _ := process.Ctx(cmd)
	log := zap.L()

	table, err := routes.Load(config.Routes)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := gateway.OpenBitStore(ctx, log, config.BitStore)
	if err != nil {
		return nil, nil, nil, err
	}

	filter, err := bloom.New(log.Named("bloom"), store, config.Bloom)
	if err != nil {
		return nil, nil, nil, errs.Combine(err, store.Close())
	}
	return filter, table, store.Close, nil
}

// loadEnv loads .env files from the working directory. Values already present
// in the environment win.
func loadEnv() error {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errs.New("unable to load %s: %v", name, err)
		}
	}
	return nil
}

func main() {
	logger, _, _ := process.NewLogger("bloomgate")
	zap.ReplaceGlobals(logger)

	if err := loadEnv(); err != nil {
		logger.Fatal("failed to load environment", zap.Error(err))
	}

	process.Exec(rootCmd)
}
