// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package protocol serializes the viewer wire protocol.
//
// A viewer's first frame is a Hello envelope carrying its display UUID
// and an optional htmx flag. The server then pushes Pending, Welcome
// and Display payloads. In JSON mode every payload is a tagged
// envelope; in htmx mode Pending and Display are rendered as HTML
// fragments that swap into the viewer page's #content element
// out-of-band.
package protocol
