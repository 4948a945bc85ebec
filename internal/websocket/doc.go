// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package websocket serves viewer connections. Each connection reads a
// single Hello frame, then splits into two goroutines: a send loop that
// walks the display's active playlist and pushes payloads, and a
// heartbeat that owns the read half, pinging the viewer and enforcing
// the pong window. Either goroutine exiting tears the connection down.
//
// The send loop sleeps between items interruptibly: catalog changes
// naming the display, its schedule, or its active playlist cut the
// sleep short and restart the cycle against fresh state.
package websocket
