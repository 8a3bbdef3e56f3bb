// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package admin_test

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"storj.io/bloomgate/gateway/admin"
	"storj.io/bloomgate/gateway/bloom"
	"storj.io/bloomgate/gateway/maintenance"
	"storj.io/bloomgate/gateway/routes"
	"storj.io/bloomgate/private/bitstore"
	"storj.io/bloomgate/private/bitstore/memstore"
	"storj.io/bloomgate/private/bitstore/mock_bitstore"
	"storj.io/common/testcontext"
)

const token = "very-secret-token"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newServer(t *testing.T, store bitstore.Store, config admin.Config) http.Handler {
	log := zaptest.NewLogger(t)

	filter, err := bloom.New(log, store, bloom.Config{
		Size: 1000000, HashCount: 7, Prefix: "bloom_filter:", Hash: "xxh3", Timeout: time.Second,
	})
	require.NoError(t, err)

	table := routes.Default()
	service := maintenance.NewService(log, filter, table)
	return admin.NewServer(log, nil, filter, service, table, config).Handler()
}

func do(t *testing.T, handler http.Handler, method, path, auth, body string) (int, envelope) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, rec.Code, resp.Code)
	return rec.Code, resp
}

func TestAuth(t *testing.T) {
	disabled := newServer(t, memstore.New(), admin.Config{})
	status, resp := do(t, disabled, http.MethodGet, "/api/v1/filters", token, "")
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Authorization not enabled.", resp.Message)

	handler := newServer(t, memstore.New(), admin.Config{AuthorizationToken: token})
	status, _ = do(t, handler, http.MethodGet, "/api/v1/filters", "", "")
	require.Equal(t, http.StatusForbidden, status)
	status, _ = do(t, handler, http.MethodGet, "/api/v1/filters", "wrong", "")
	require.Equal(t, http.StatusForbidden, status)

	status, resp = do(t, handler, http.MethodGet, "/api/v1/filters", token, "")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `["blog","default","mind_map","work"]`, string(resp.Data))
}

func TestResponseHeaders(t *testing.T) {
	handler := newServer(t, memstore.New(), admin.Config{AuthorizationToken: token})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/filters", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rec.Header().Get("X-Request-Id"), 36)
	require.Equal(t, "must-revalidate", rec.Header().Get("Cache-Control"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/filters", nil)
	req.Header.Set("Authorization", token)
	req.Header.Set("X-Request-Id", "backend-1234")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, "backend-1234", rec.Header().Get("X-Request-Id"))
}

func TestPublishAndCheck(t *testing.T) {
	handler := newServer(t, memstore.New(), admin.Config{AuthorizationToken: token, MaxBatchSize: 10})

	status, resp := do(t, handler, http.MethodGet, "/api/v1/resources/article/7", token, "")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"type":"article","id":"7","filter":"blog","mightExist":false}`, string(resp.Data))

	status, resp = do(t, handler, http.MethodPost, "/api/v1/resources/article/7", token, "")
	require.Equal(t, http.StatusAccepted, status)
	require.JSONEq(t, `{"type":"article","id":"7","filter":"blog"}`, string(resp.Data))

	status, resp = do(t, handler, http.MethodGet, "/api/v1/resources/blog/7", token, "")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"type":"blog","id":"7","filter":"blog","mightExist":true}`, string(resp.Data))

	status, resp = do(t, handler, http.MethodPost, "/api/v1/resources/work", token, `{"ids":["1","2","","3"]}`)
	require.Equal(t, http.StatusAccepted, status)
	require.JSONEq(t, `{"type":"work","filter":"work","accepted":3}`, string(resp.Data))

	for _, id := range []string{"1", "2", "3"} {
		_, resp = do(t, handler, http.MethodGet, "/api/v1/resources/work/"+id, token, "")
		require.Contains(t, string(resp.Data), `"mightExist":true`)
	}

	status, resp = do(t, handler, http.MethodGet, "/api/v1/filters/work/stats", token, "")
	require.Equal(t, http.StatusOK, status)
	var stats bloom.Stats
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	require.Equal(t, "work", stats.Filter)
	require.InDelta(t, 3, stats.EstimatedKeys, 0.5)
}

func TestPublishBatch_Invalid(t *testing.T) {
	handler := newServer(t, memstore.New(), admin.Config{AuthorizationToken: token, MaxBatchSize: 2})

	status, _ := do(t, handler, http.MethodPost, "/api/v1/resources/work", token, `{"ids":`)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, handler, http.MethodPost, "/api/v1/resources/work", token, `{"ids":["1","2","3"]}`)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestStoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_bitstore.NewMockStore(ctrl)
	failure := errors.New("connection refused")
	store.EXPECT().GetBits(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, failure)
	store.EXPECT().CountBits(gomock.Any(), gomock.Any()).Return(int64(0), failure)
	store.EXPECT().SetBits(gomock.Any(), gomock.Any(), gomock.Any()).Return(failure)

	handler := newServer(t, store, admin.Config{AuthorizationToken: token})

	status, _ := do(t, handler, http.MethodGet, "/api/v1/resources/blog/1", token, "")
	require.Equal(t, http.StatusServiceUnavailable, status)

	status, _ = do(t, handler, http.MethodGet, "/api/v1/filters/blog/stats", token, "")
	require.Equal(t, http.StatusServiceUnavailable, status)

	// publication never fails towards the caller
	status, _ = do(t, handler, http.MethodPost, "/api/v1/resources/blog/1", token, "")
	require.Equal(t, http.StatusAccepted, status)
}

func TestRun(t *testing.T) {
	ctx := testcontext.New(t)
	log := zaptest.NewLogger(t)

	filter, err := bloom.New(log, memstore.New(), bloom.Config{
		Size: 1024, HashCount: 3, Prefix: "bf:", Hash: "xxh3", Timeout: time.Second,
	})
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	table := routes.Default()
	server := admin.NewServer(log, listener, filter, maintenance.NewService(log, filter, table), table, admin.Config{AuthorizationToken: token})
	ctx.Go(func() error { return server.Run(ctx) })
	defer ctx.Check(server.Close)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+listener.Addr().String()+"/api/v1/resources/blog/5", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.True(t, filter.MightContain(ctx, "blog", "5"))
}
