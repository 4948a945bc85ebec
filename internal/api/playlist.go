// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vitrine-io/vitrine/internal/models"
	"github.com/vitrine-io/vitrine/internal/validation"
)

type playlistRequest struct {
	Name  string                `json:"name" validate:"required,min=1"`
	Items []models.PlaylistItem `json:"items"`
}

type playlistResponse struct {
	UUID  uuid.UUID             `json:"uuid"`
	Name  string                `json:"name"`
	Items []models.PlaylistItem `json:"items"`
}

func toPlaylistResponse(id uuid.UUID, p models.Playlist) playlistResponse {
	items := p.Items
	if items == nil {
		items = []models.PlaylistItem{}
	}
	return playlistResponse{UUID: id, Name: p.Name, Items: items}
}

func (h *handlers) listPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists := h.store.Playlists()
	out := make([]playlistResponse, 0, len(playlists))
	for id, p := range playlists {
		out = append(out, toPlaylistResponse(id, p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	respondJSON(w, r, http.StatusOK, out)
}

func (h *handlers) playlistNameTaken(name string, exclude uuid.UUID) bool {
	taken := false
	h.store.View(func(c *models.Content) {
		for id, p := range c.Playlists {
			if id != exclude && p.Name == name {
				taken = true
				return
			}
		}
	})
	return taken
}

func (h *handlers) createPlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, 0, "invalid playlist: "+err.Error())
		return
	}
	if h.playlistNameTaken(req.Name, uuid.Nil) {
		respondError(w, r, http.StatusBadRequest, 1, "playlist name already taken")
		return
	}

	id := uuid.New()
	h.store.CreatePlaylist(id, req.Name)
	if len(req.Items) > 0 {
		h.store.UpdatePlaylist(id, req.Name, req.Items)
	}

	created, ok := h.store.Playlist(id)
	if !ok {
		respondError(w, r, http.StatusInternalServerError, 2, "playlist not readable after create")
		return
	}
	respondJSON(w, r, http.StatusOK, []playlistResponse{toPlaylistResponse(id, created)})
}

func (h *handlers) updatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, 0, "invalid playlist uuid")
		return
	}
	var req playlistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, 0, "invalid playlist: "+err.Error())
		return
	}

	if _, ok := h.store.Playlist(id); !ok {
		respondError(w, r, http.StatusBadRequest, 1, "playlist not found")
		return
	}
	if h.playlistNameTaken(req.Name, id) {
		respondError(w, r, http.StatusBadRequest, 2, "playlist name already taken")
		return
	}

	h.store.UpdatePlaylist(id, req.Name, req.Items)

	updated, ok := h.store.Playlist(id)
	if !ok {
		respondError(w, r, http.StatusInternalServerError, 4, "playlist not readable after update")
		return
	}
	respondJSON(w, r, http.StatusOK, []playlistResponse{toPlaylistResponse(id, updated)})
}

func (h *handlers) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, 0, "invalid playlist uuid")
		return
	}

	// A playlist referenced by any schedule, as fallback or in a rule,
	// cannot be removed.
	var dependants []string
	h.store.View(func(c *models.Content) {
		for _, sched := range c.Schedules {
			if sched.References(id) {
				dependants = append(dependants, sched.Name())
			}
		}
	})
	if len(dependants) > 0 {
		sort.Strings(dependants)
		respondError(w, r, http.StatusBadRequest, 1,
			"playlist used by schedules: "+strings.Join(dependants, ", "))
		return
	}

	removed, ok := h.store.Playlist(id)
	if !ok {
		respondError(w, r, http.StatusBadRequest, 2, "playlist not found")
		return
	}

	h.store.DeletePlaylist(id)
	respondJSON(w, r, http.StatusOK, []playlistResponse{toPlaylistResponse(id, removed)})
}
