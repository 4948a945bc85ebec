// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/vitrine-io/vitrine/internal/logging"
)

// apiError is the error body every admin endpoint uses. Codes are
// endpoint-local, not global.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Ctx(r.Context()).Err(err).Msg("Encoding response failed")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status, code int, message string) {
	logging.Ctx(r.Context()).Debug().
		Int("code", code).
		Str("message", message).
		Msg("Rejecting admin request")
	respondJSON(w, r, status, apiError{Code: code, Message: message})
}

// decodeBody parses the request body into dst. A false return means
// the response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, 0, "malformed request body")
		return false
	}
	return true
}
