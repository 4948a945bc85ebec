// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package models

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Display binds a physical screen to the schedule that drives it.
type Display struct {
	Name     string    `json:"name"`
	Schedule uuid.UUID `json:"schedule"`
}

// UnmarshalJSON accepts the current object encoding as well as the
// legacy encoding in which a display was stored as a bare schedule UUID
// string. Legacy displays decode with an empty name.
func (d *Display) UnmarshalJSON(data []byte) error {
	type plain Display
	var p plain
	if err := json.Unmarshal(data, &p); err == nil {
		*d = Display(p)
		return nil
	}

	var legacy uuid.UUID
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("display: unrecognized encoding: %w", err)
	}
	*d = Display{Schedule: legacy}
	return nil
}
