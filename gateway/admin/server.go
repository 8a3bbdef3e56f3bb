// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package admin implements the internal API used by the backend to publish
// new resources and by operators to inspect filters.
package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storj.io/bloomgate/gateway/bloom"
	"storj.io/bloomgate/gateway/maintenance"
	"storj.io/bloomgate/gateway/routes"
	"storj.io/common/errs2"
)

var mon = monkit.Package()

// Config defines configuration for the admin server.
type Config struct {
	Address            string `help:"admin peer http listening address" releaseDefault:"" devDefault:"127.0.0.1:8081" testDefault:"127.0.0.1:0"`
	AuthorizationToken string `help:"token required in the Authorization header of admin requests" default:""`
	MaxBatchSize       int    `help:"maximum number of ids accepted by a single batch publication" default:"10000"`
}

// Filter is the read side of the resource existence filters.
type Filter interface {
	Contains(ctx context.Context, filter, key string) (bool, error)
	Stats(ctx context.Context, filter string) (bloom.Stats, error)
}

// Server provides endpoints for publishing and inspecting filters.
type Server struct {
	log *zap.Logger

	listener net.Listener
	server   http.Server

	filter    Filter
	publisher maintenance.Publisher
	table     *routes.Table

	config Config
}

// NewServer returns a new administration Server.
func NewServer(log *zap.Logger, listener net.Listener, filter Filter, publisher maintenance.Publisher, table *routes.Table, config Config) *Server {
	server := &Server{
		log: log,

		listener: listener,

		filter:    filter,
		publisher: publisher,
		table:     table,

		config: config,
	}

	root := mux.NewRouter()

	api := root.PathPrefix("/api/v1").Subrouter()
	api.Use(server.withAuth)
	api.HandleFunc("/resources/{type}", server.publishResources).Methods(http.MethodPost)
	api.HandleFunc("/resources/{type}/{id}", server.publishResource).Methods(http.MethodPost)
	api.HandleFunc("/resources/{type}/{id}", server.checkResource).Methods(http.MethodGet)
	api.HandleFunc("/filters", server.listFilters).Methods(http.MethodGet)
	api.HandleFunc("/filters/{filter}/stats", server.filterStats).Methods(http.MethodGet)

	server.server.Handler = root
	return server
}

// Handler returns the root handler of the server.
func (server *Server) Handler() http.Handler { return server.server.Handler }

// Run starts the admin endpoint.
func (server *Server) Run(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)
	if server.listener == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	var group errgroup.Group
	group.Go(func() error {
		<-ctx.Done()
		return Error.Wrap(server.server.Shutdown(context.Background()))
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

// withAuth checks that the request carries the configured token.
func (server *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if server.config.AuthorizationToken == "" {
			server.errorResponse(w, ErrAuthorizationNotEnabled)
			return
		}
		if !validateAPIKey(server.config.AuthorizationToken, r.Header.Get("Authorization")) {
			server.errorResponse(w, ErrForbidden)
			return
		}

		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		server.log.Debug("admin action",
			zap.String("request", requestID),
			zap.String("host", r.Host),
			zap.String("action", r.Method+"-"+r.RequestURI))

		w.Header().Set("Cache-Control", "must-revalidate")
		next.ServeHTTP(w, r)
	})
}

func validateAPIKey(configured, sent string) bool {
	equality := subtle.ConstantTimeCompare([]byte(sent), []byte(configured))
	return equality == 1
}
