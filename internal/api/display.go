// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vitrine-io/vitrine/internal/models"
	"github.com/vitrine-io/vitrine/internal/validation"
)

type displayRequest struct {
	// UUID lets pre-provisioned kiosks register under a known identity.
	// Create only; updates address the entity through the URL.
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	Name     string     `json:"name" validate:"required,min=1"`
	Schedule uuid.UUID  `json:"schedule" validate:"required"`
}

type displayResponse struct {
	UUID     uuid.UUID `json:"uuid"`
	Name     string    `json:"name"`
	Schedule uuid.UUID `json:"schedule"`
}

func toDisplayResponse(id uuid.UUID, d models.Display) displayResponse {
	return displayResponse{UUID: id, Name: d.Name, Schedule: d.Schedule}
}

func (h *handlers) listDisplays(w http.ResponseWriter, r *http.Request) {
	displays := h.store.Displays()
	out := make([]displayResponse, 0, len(displays))
	for id, d := range displays {
		out = append(out, toDisplayResponse(id, d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	respondJSON(w, r, http.StatusOK, out)
}

// displayNameTaken reports whether another display already uses the
// name.
func (h *handlers) displayNameTaken(name string, exclude uuid.UUID) bool {
	taken := false
	h.store.View(func(c *models.Content) {
		for id, d := range c.Displays {
			if id != exclude && d.Name == name {
				taken = true
				return
			}
		}
	})
	return taken
}

func (h *handlers) createDisplay(w http.ResponseWriter, r *http.Request) {
	var req displayRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, 0, "invalid display: "+err.Error())
		return
	}
	if h.displayNameTaken(req.Name, uuid.Nil) {
		respondError(w, r, http.StatusBadRequest, 1, "display name already taken")
		return
	}

	id := uuid.New()
	if req.UUID != nil {
		if _, exists := h.store.Display(*req.UUID); exists {
			respondError(w, r, http.StatusBadRequest, 2, "display uuid already taken")
			return
		}
		id = *req.UUID
	}

	h.store.CreateDisplay(id, req.Name, req.Schedule)

	created, ok := h.store.Display(id)
	if !ok {
		respondError(w, r, http.StatusInternalServerError, 3, "display not readable after create")
		return
	}
	respondJSON(w, r, http.StatusOK, []displayResponse{toDisplayResponse(id, created)})
}

func (h *handlers) updateDisplay(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, 0, "invalid display uuid")
		return
	}
	var req displayRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, 0, "invalid display: "+err.Error())
		return
	}

	if _, ok := h.store.Display(id); !ok {
		respondError(w, r, http.StatusBadRequest, 1, "display not found")
		return
	}
	if h.displayNameTaken(req.Name, id) {
		respondError(w, r, http.StatusBadRequest, 2, "display name already taken")
		return
	}

	h.store.UpdateDisplay(id, req.Name, req.Schedule)

	updated, ok := h.store.Display(id)
	if !ok {
		respondError(w, r, http.StatusInternalServerError, 3, "display not readable after update")
		return
	}
	respondJSON(w, r, http.StatusOK, []displayResponse{toDisplayResponse(id, updated)})
}

func (h *handlers) deleteDisplay(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, 0, "invalid display uuid")
		return
	}

	removed, ok := h.store.Display(id)
	if !ok {
		respondError(w, r, http.StatusBadRequest, 1, "display not found")
		return
	}

	h.store.DeleteDisplay(id)
	respondJSON(w, r, http.StatusOK, []displayResponse{toDisplayResponse(id, removed)})
}
