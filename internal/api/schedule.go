// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package api

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vitrine-io/vitrine/internal/models"
	"github.com/vitrine-io/vitrine/internal/schedule"
	"github.com/vitrine-io/vitrine/internal/validation"
)

type createScheduleRequest struct {
	Name string `json:"name" validate:"required,min=1"`
	// Playlist is the fallback shown outside all rule windows.
	Playlist uuid.UUID `json:"playlist" validate:"required"`
}

type scheduleRuleRequest struct {
	Playlist uuid.UUID `json:"playlist" validate:"required"`
	Start    string    `json:"start" validate:"required,cron"`
	End      string    `json:"end" validate:"required,cron"`
}

type updateScheduleRequest struct {
	Name      string                `json:"name" validate:"required,min=1"`
	Playlist  uuid.UUID             `json:"playlist" validate:"required"`
	Scheduled []scheduleRuleRequest `json:"scheduled" validate:"dive"`
}

type scheduleResponse struct {
	UUID      uuid.UUID       `json:"uuid"`
	Name      string          `json:"name"`
	Playlist  uuid.UUID       `json:"playlist"`
	Scheduled []schedule.Rule `json:"scheduled"`
	Active    uuid.UUID       `json:"active"`
}

func toScheduleResponse(id uuid.UUID, s *schedule.Schedule) scheduleResponse {
	rules := s.Rules()
	if rules == nil {
		rules = []schedule.Rule{}
	}
	return scheduleResponse{
		UUID:      id,
		Name:      s.Name(),
		Playlist:  s.Fallback(),
		Scheduled: rules,
		Active:    s.ActivePlaylist(),
	}
}

// cronValidationFailed reports whether the validation error came from
// the cron tag, which maps onto its own error code.
func cronValidationFailed(err error) bool {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return false
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "cron" {
			return true
		}
	}
	return false
}

func (h *handlers) listSchedules(w http.ResponseWriter, r *http.Request) {
	schedules := h.store.Schedules()
	out := make([]scheduleResponse, 0, len(schedules))
	for id, s := range schedules {
		out = append(out, toScheduleResponse(id, s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	respondJSON(w, r, http.StatusOK, out)
}

func (h *handlers) scheduleNameTaken(name string, exclude uuid.UUID) bool {
	taken := false
	h.store.View(func(c *models.Content) {
		for id, s := range c.Schedules {
			if id != exclude && s.Name() == name {
				taken = true
				return
			}
		}
	})
	return taken
}

func (h *handlers) createSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, 0, "invalid schedule: "+err.Error())
		return
	}
	if h.scheduleNameTaken(req.Name, uuid.Nil) {
		respondError(w, r, http.StatusBadRequest, 1, "schedule name already taken")
		return
	}

	id := uuid.New()
	if err := h.store.CreateSchedule(id, req.Name, req.Playlist); err != nil {
		respondError(w, r, http.StatusInternalServerError, 2, "creating schedule failed")
		return
	}

	created, ok := h.store.Schedule(id)
	if !ok {
		respondError(w, r, http.StatusInternalServerError, 2, "schedule not readable after create")
		return
	}
	respondJSON(w, r, http.StatusOK, []scheduleResponse{toScheduleResponse(id, created)})
}

func (h *handlers) updateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, 0, "invalid schedule uuid")
		return
	}
	var req updateScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		if cronValidationFailed(err) {
			respondError(w, r, http.StatusInternalServerError, 4, "invalid cron expression")
			return
		}
		respondError(w, r, http.StatusBadRequest, 0, "invalid schedule: "+err.Error())
		return
	}

	if _, ok := h.store.Schedule(id); !ok {
		respondError(w, r, http.StatusBadRequest, 1, "schedule not found")
		return
	}
	if h.scheduleNameTaken(req.Name, id) {
		respondError(w, r, http.StatusBadRequest, 2, "schedule name already taken")
		return
	}

	// Every playlist may appear at most once across the fallback and
	// all rules; a duplicate would make resolution ambiguous for the
	// admin UI.
	seen := map[uuid.UUID]struct{}{req.Playlist: {}}
	rules := make([]schedule.Rule, 0, len(req.Scheduled))
	for _, rule := range req.Scheduled {
		if _, dup := seen[rule.Playlist]; dup {
			respondError(w, r, http.StatusBadRequest, 3, "duplicate playlist in schedule")
			return
		}
		seen[rule.Playlist] = struct{}{}
		rules = append(rules, schedule.Rule{Playlist: rule.Playlist, Start: rule.Start, End: rule.End})
	}

	if err := h.store.UpdateSchedule(id, req.Name, req.Playlist, rules); err != nil {
		respondError(w, r, http.StatusInternalServerError, 4, "invalid cron expression")
		return
	}

	updated, ok := h.store.Schedule(id)
	if !ok {
		respondError(w, r, http.StatusInternalServerError, 5, "schedule not readable after update")
		return
	}
	respondJSON(w, r, http.StatusOK, []scheduleResponse{toScheduleResponse(id, updated)})
}

func (h *handlers) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, 0, "invalid schedule uuid")
		return
	}

	var dependants []string
	h.store.View(func(c *models.Content) {
		for _, d := range c.Displays {
			if d.Schedule == id {
				dependants = append(dependants, d.Name)
			}
		}
	})
	if len(dependants) > 0 {
		sort.Strings(dependants)
		respondError(w, r, http.StatusBadRequest, 1,
			"schedule used by displays: "+strings.Join(dependants, ", "))
		return
	}

	removed, ok := h.store.Schedule(id)
	if !ok {
		respondError(w, r, http.StatusBadRequest, 2, "schedule not found")
		return
	}

	h.store.DeleteSchedule(id)
	respondJSON(w, r, http.StatusOK, []scheduleResponse{toScheduleResponse(id, removed)})
}
