// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package proxy implements the public gateway that forwards requests which
// pass the resource existence gate to the backend.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storj.io/bloomgate/gateway/gate"
	"storj.io/common/errs2"
)

var (
	// Error is the default error class for the proxy package.
	Error = errs.Class("proxy")

	mon = monkit.Package()
)

// Config contains configurable values for the public gateway.
type Config struct {
	Address         string        `help:"public address to listen on" devDefault:"127.0.0.1:8080" releaseDefault:":8080" testDefault:"127.0.0.1:0"`
	Upstream        string        `help:"URL of the backend receiving forwarded requests" default:"http://127.0.0.1:9501"`
	ShutdownTimeout time.Duration `help:"how long to wait for in-flight requests on shutdown" default:"10s" testDefault:"1s"`
}

// Server forwards requests to the upstream backend through the gate.
type Server struct {
	log *zap.Logger

	listener net.Listener
	server   http.Server

	config Config
}

// NewServer returns a new gateway Server listening on listener.
func NewServer(log *zap.Logger, listener net.Listener, gate *gate.Gate, config Config) (*Server, error) {
	upstream, err := url.Parse(config.Upstream)
	if err != nil {
		return nil, Error.New("invalid upstream %q: %v", config.Upstream, err)
	}
	if upstream.Scheme != "http" && upstream.Scheme != "https" {
		return nil, Error.New("upstream %q must be an http or https URL", config.Upstream)
	}

	server := &Server{
		log:      log,
		listener: listener,
		config:   config,
	}

	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorLog = zap.NewStdLog(log.Named("reverse-proxy"))
	proxy.ErrorHandler = server.upstreamError

	root := mux.NewRouter()
	root.Use(gate.Middleware)
	root.PathPrefix("/").Handler(proxy)

	server.server.Handler = root
	server.server.ErrorLog = zap.NewStdLog(log)
	return server, nil
}

// Addr returns the address the server listens on.
func (server *Server) Addr() net.Addr { return server.listener.Addr() }

func (server *Server) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	mon.Event("proxy_upstream_error")
	if errs2.IsCanceled(err) {
		return
	}
	server.log.Warn("upstream request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))

	body, _ := json.Marshal(gate.Response{Code: http.StatusBadGateway, Message: "Bad gateway"})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write(body)
}

// Run starts the gateway endpoint.
func (server *Server) Run(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	ctx, cancel := context.WithCancel(ctx)
	var group errgroup.Group
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), server.config.ShutdownTimeout)
		defer shutdownCancel()
		return Error.Wrap(server.server.Shutdown(shutdownCtx))
	})
	group.Go(func() error {
		defer cancel()
		err := server.server.Serve(server.listener)
		if errs2.IsCanceled(err) || errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return Error.Wrap(err)
	})
	return group.Wait()
}

// Close closes server and underlying listener.
func (server *Server) Close() error {
	err := server.server.Close()
	if server.listener != nil {
		// the listener is only owned by the http server once Run is called
		if lerr := server.listener.Close(); !errors.Is(lerr, net.ErrClosed) {
			err = errs.Combine(err, lerr)
		}
	}
	return Error.Wrap(err)
}
