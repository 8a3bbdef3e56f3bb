// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package gate

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Response is the JSON envelope used by the backend for every reply.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// NotFoundMessage is the message of a short-circuited lookup.
const NotFoundMessage = "Resource not found"

var notFoundBody = func() []byte {
	body, err := json.Marshal(Response{Code: http.StatusNotFound, Message: NotFoundMessage})
	if err != nil {
		panic(err)
	}
	return body
}()

// NotFoundBody returns the body written for a short-circuited lookup.
func NotFoundBody() []byte {
	return append([]byte(nil), notFoundBody...)
}

func writeNotFound(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	header.Set("Content-Type", "application/json")
	header.Set("Content-Length", strconv.Itoa(len(notFoundBody)))
	w.WriteHeader(http.StatusNotFound)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(notFoundBody)
}
