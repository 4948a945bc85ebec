// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package store holds the authoritative in-memory catalog behind a
// reader-writer lock, persists it to Badger as a single JSON document,
// and publishes a typed change notification after every mutation.
//
// Badger is a warm persistence tier, not a transactional source of
// truth: a failed write is logged and counted, but the in-memory state
// stands and the change is still published.
package store
