// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package api exposes the admin REST surface and assembles the HTTP
// router. Handlers enforce the referential rules the store itself does
// not: name uniqueness per entity type, existence on update, and
// dependant checks on delete. Validation failures answer with a
// per-endpoint integer code so admin clients can map them to messages.
package api
