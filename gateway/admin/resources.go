// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"storj.io/bloomgate/gateway/gate"
)

// Resource describes a resource and the filter it belongs to.
type Resource struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Filter     string `json:"filter"`
	MightExist *bool  `json:"mightExist,omitempty"`
}

// BatchRequest is the body of a batch publication.
type BatchRequest struct {
	IDs []string `json:"ids"`
}

// BatchResponse describes an accepted batch publication.
type BatchResponse struct {
	Type     string `json:"type"`
	Filter   string `json:"filter"`
	Accepted int    `json:"accepted"`
}

func (server *Server) publishResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	resource := Resource{
		Type:   vars["type"],
		ID:     vars["id"],
		Filter: server.table.FilterFor(vars["type"]),
	}

	// publication is fire and forget, failures are only logged
	server.publisher.PublishResourceKey(ctx, resource.Type, resource.ID)

	server.jsonResponse(w, http.StatusAccepted, resource)
}

func (server *Server) publishResources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resourceType := mux.Vars(r)["type"]

	var request BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		server.errorResponse(w, fmt.Errorf("%w: error decoding request body: %w", ErrBadRequest, err))
		return
	}
	if len(request.IDs) > server.config.MaxBatchSize {
		server.errorResponse(w, fmt.Errorf("%w: at most %d ids per request", ErrBadRequest, server.config.MaxBatchSize))
		return
	}

	accepted := 0
	for _, id := range request.IDs {
		if id == "" {
			continue
		}
		server.publisher.PublishResourceKey(ctx, resourceType, id)
		accepted++
	}

	server.jsonResponse(w, http.StatusAccepted, BatchResponse{
		Type:     resourceType,
		Filter:   server.table.FilterFor(resourceType),
		Accepted: accepted,
	})
}

func (server *Server) checkResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	resource := Resource{
		Type:   vars["type"],
		ID:     vars["id"],
		Filter: server.table.FilterFor(vars["type"]),
	}

	ok, err := server.filter.Contains(ctx, resource.Filter, resource.ID)
	if err != nil {
		server.errorResponse(w, fmt.Errorf("%w: %w", ErrUnavailable, err))
		return
	}
	resource.MightExist = &ok

	server.jsonResponse(w, http.StatusOK, resource)
}

func (server *Server) listFilters(w http.ResponseWriter, r *http.Request) {
	server.jsonResponse(w, http.StatusOK, server.table.Filters())
}

func (server *Server) filterStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := server.filter.Stats(ctx, mux.Vars(r)["filter"])
	if err != nil {
		server.errorResponse(w, fmt.Errorf("%w: %w", ErrUnavailable, err))
		return
	}

	server.jsonResponse(w, http.StatusOK, stats)
}

func (server *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(gate.Response{
		Code:    status,
		Message: http.StatusText(status),
		Data:    data,
	})
	if err != nil {
		server.errorResponse(w, fmt.Errorf("%w: %v", ErrInternalError, err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (server *Server) errorResponse(w http.ResponseWriter, err error) {
	var e *ErrorResponse
	if !errors.As(err, &e) {
		e = ErrInternalError
	}
	if e.StatusCode >= 500 {
		server.log.Warn("error during admin request", zap.Error(err))
	} else {
		server.log.Debug("rejected admin request", zap.Error(err))
	}

	body, _ := json.Marshal(gate.Response{
		Code:    e.StatusCode,
		Message: err.Error(),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_, _ = w.Write(body)
}
