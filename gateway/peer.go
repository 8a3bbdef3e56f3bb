// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package gateway wires the resource existence filter, the gate and the
// maintenance path into a runnable process.
package gateway

import (
	"context"
	"net"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storj.io/bloomgate/gateway/admin"
	"storj.io/bloomgate/gateway/bloom"
	"storj.io/bloomgate/gateway/gate"
	"storj.io/bloomgate/gateway/maintenance"
	"storj.io/bloomgate/gateway/proxy"
	"storj.io/bloomgate/gateway/routes"
	"storj.io/bloomgate/private/bitstore"
)

// Error is the default error class for the gateway peer.
var Error = errs.Class("gateway")

// Config is all the configuration parameters for a gateway.
type Config struct {
	Bloom       bloom.Config
	BitStore    BitStoreConfig
	Routes      routes.Config
	Maintenance maintenance.Config
	Server      proxy.Config
	Admin       admin.Config
}

// Verify verifies whether configuration is consistent and acceptable.
func (config *Config) Verify() error {
	return config.Bloom.Validate()
}

// Peer is the representation of a gateway process.
type Peer struct {
	// core dependencies
	Log   *zap.Logger
	Store bitstore.Store

	Routes *routes.Table
	Filter *bloom.Filter
	Gate   *gate.Gate

	Maintenance struct {
		Publisher maintenance.Publisher
		Queue     *maintenance.Queue
	}

	// servers
	Public struct {
		Listener net.Listener
		Server   *proxy.Server
	}

	Admin struct {
		Listener net.Listener
		Server   *admin.Server
	}
}

// New creates a new gateway. The peer takes ownership of store.
func New(log *zap.Logger, store bitstore.Store, config Config) (*Peer, error) {
	peer := &Peer{
		Log:   log,
		Store: store,
	}

	var err error

	{ // setup filters
		if err := config.Verify(); err != nil {
			return nil, errs.Combine(err, peer.Close())
		}

		peer.Routes, err = routes.Load(config.Routes)
		if err != nil {
			return nil, errs.Combine(err, peer.Close())
		}

		peer.Filter, err = bloom.New(peer.Log.Named("bloom"), peer.Store, config.Bloom)
		if err != nil {
			return nil, errs.Combine(err, peer.Close())
		}

		peer.Gate = gate.New(peer.Log.Named("gate"), peer.Filter, peer.Routes)
	}

	{ // setup maintenance
		peer.Maintenance.Publisher, peer.Maintenance.Queue, err = maintenance.NewPublisher(
			peer.Log.Named("maintenance"), peer.Filter, peer.Routes, config.Maintenance)
		if err != nil {
			return nil, errs.Combine(err, peer.Close())
		}
	}

	{ // setup public server
		peer.Public.Listener, err = net.Listen("tcp", config.Server.Address)
		if err != nil {
			return nil, errs.Combine(Error.Wrap(err), peer.Close())
		}

		peer.Public.Server, err = proxy.NewServer(peer.Log.Named("proxy"), peer.Public.Listener, peer.Gate, config.Server)
		if err != nil {
			return nil, errs.Combine(err, peer.Close())
		}
	}

	if config.Admin.Address != "" { // setup admin server
		peer.Admin.Listener, err = net.Listen("tcp", config.Admin.Address)
		if err != nil {
			return nil, errs.Combine(Error.Wrap(err), peer.Close())
		}

		peer.Admin.Server = admin.NewServer(peer.Log.Named("admin"), peer.Admin.Listener,
			peer.Filter, peer.Maintenance.Publisher, peer.Routes, config.Admin)
	}

	return peer, nil
}

// Run runs the gateway until it's either closed or it errors.
func (peer *Peer) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	peer.Log.Info("gateway started",
		zap.String("address", peer.Addr()),
		zap.Strings("filters", peer.Routes.Filters()))

	if peer.Maintenance.Queue != nil {
		group.Go(func() error {
			return peer.Maintenance.Queue.Run(ctx)
		})
	}
	group.Go(func() error {
		return peer.Public.Server.Run(ctx)
	})
	if peer.Admin.Server != nil {
		group.Go(func() error {
			return peer.Admin.Server.Run(ctx)
		})
	}

	return group.Wait()
}

// Close closes all the resources.
func (peer *Peer) Close() error {
	var errlist errs.Group

	// close servers first so nothing publishes into a closed queue
	if peer.Admin.Server != nil {
		errlist.Add(peer.Admin.Server.Close())
	} else if peer.Admin.Listener != nil {
		errlist.Add(peer.Admin.Listener.Close())
	}

	if peer.Public.Server != nil {
		errlist.Add(peer.Public.Server.Close())
	} else if peer.Public.Listener != nil {
		errlist.Add(peer.Public.Listener.Close())
	}

	if peer.Maintenance.Queue != nil {
		errlist.Add(peer.Maintenance.Queue.Close())
	}

	if peer.Store != nil {
		errlist.Add(peer.Store.Close())
	}

	return errlist.Err()
}

// Addr returns the public address.
func (peer *Peer) Addr() string { return peer.Public.Listener.Addr().String() }

// AdminAddr returns the admin address, or an empty string when the admin
// server is disabled.
func (peer *Peer) AdminAddr() string {
	if peer.Admin.Listener == nil {
		return ""
	}
	return peer.Admin.Listener.Addr().String()
}
