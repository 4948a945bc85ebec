// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package middleware carries the HTTP middleware shared by the admin
// API: request ID propagation and per-request metrics.
package middleware

import (
	"net/http"

	"github.com/vitrine-io/vitrine/internal/logging"
)

// RequestIDHeader is the header the ID is read from and echoed on.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller-supplied request ID or generates one,
// stores it in the request context for log correlation, and echoes it
// on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = logging.GenerateRequestID()
		}
		ctx := logging.ContextWithRequestID(r.Context(), id)
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
