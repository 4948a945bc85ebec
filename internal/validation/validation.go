// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package validation holds the shared request validator and the custom
// cron rule.
package validation

import (
	"github.com/go-playground/validator/v10"

	"github.com/vitrine-io/vitrine/internal/schedule"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// "cron" accepts the seven-field expressions schedules use.
	_ = v.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		return schedule.ValidateCron(fl.Field().String()) == nil
	})
	return v
}

// Struct validates a request DTO against its struct tags.
func Struct(s any) error {
	return validate.Struct(s)
}
