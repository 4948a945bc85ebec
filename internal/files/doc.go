// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package files manages uploaded media. Files land in a flat media
// directory; an index of their serving paths is kept in Badger so the
// admin UI can list them without walking the filesystem. Deleting a
// file does not touch playlist items that reference it.
package files
