// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitrine-io/vitrine/internal/files"
	"github.com/vitrine-io/vitrine/internal/middleware"
	"github.com/vitrine-io/vitrine/internal/store"
)

// Deps carries everything the router mounts.
type Deps struct {
	Store  *store.Store
	WS     http.Handler
	Files  *files.Service
	Viewer http.Handler

	// RequestsPerMinute rate-limits per client IP; 0 disables.
	RequestsPerMinute int
}

type handlers struct {
	store *store.Store
}

// NewRouter assembles the full HTTP surface: the admin API, the media
// endpoints, the viewer page, the websocket, and the operational
// endpoints.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	if d.RequestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(d.RequestsPerMinute, time.Minute))
	}
	r.Use(middleware.Prometheus)

	h := &handlers{store: d.Store}

	r.Route("/api", func(r chi.Router) {
		r.Route("/display", func(r chi.Router) {
			r.Get("/", h.listDisplays)
			r.Post("/", h.createDisplay)
			r.Put("/{uuid}", h.updateDisplay)
			r.Delete("/{uuid}", h.deleteDisplay)
		})
		r.Route("/playlist", func(r chi.Router) {
			r.Get("/", h.listPlaylists)
			r.Post("/", h.createPlaylist)
			r.Put("/{uuid}", h.updatePlaylist)
			r.Delete("/{uuid}", h.deletePlaylist)
		})
		r.Route("/schedule", func(r chi.Router) {
			r.Get("/", h.listSchedules)
			r.Post("/", h.createSchedule)
			r.Put("/{uuid}", h.updateSchedule)
			r.Delete("/{uuid}", h.deleteSchedule)
		})
		if d.Files != nil {
			r.Get("/files", d.Files.List)
			r.Post("/files", d.Files.Upload)
		}
	})

	if d.Files != nil {
		r.Handle("/files/*", d.Files.Handler())
	}
	if d.Viewer != nil {
		r.Get("/display/{uuid}", d.Viewer.ServeHTTP)
	}
	if d.WS != nil {
		// Kiosk firmware connects to the root path; the viewer page
		// uses /ws.
		r.Handle("/", d.WS)
		r.Handle("/ws", d.WS)
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
