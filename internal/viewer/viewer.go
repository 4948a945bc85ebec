// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package viewer serves the embedded browser viewer. The page opens
// the websocket, identifies itself with the display UUID baked into
// its URL, and renders whatever the server pushes.
package viewer

import (
	"crypto/sha256"
	"encoding/hex"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	_ "embed"
)

//go:embed viewer.html
var pageHTML string

var pageTemplate = template.Must(template.New("viewer").Parse(pageHTML))

// AssetHash fingerprints the embedded page. Connected viewers compare
// it against the hash in their Welcome payload and reload when it no
// longer matches.
func AssetHash() string {
	sum := sha256.Sum256([]byte(pageHTML))
	return hex.EncodeToString(sum[:8])
}

// Handler serves GET /display/{uuid}.
func Handler() http.HandlerFunc {
	hash := AssetHash()
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "uuid"))
		if err != nil {
			http.Error(w, "invalid display uuid", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = pageTemplate.Execute(w, struct {
			UUID      uuid.UUID
			AssetHash string
		}{UUID: id, AssetHash: hash})
	}
}
