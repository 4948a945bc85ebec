// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package websocket

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitrine-io/vitrine/internal/metrics"
)

// errPongTimeout marks a viewer that accepted the ping but never
// answered it.
var errPongTimeout = errors.New("viewer missed the pong window")

// heartbeat owns the read half after Hello. It pings on a fixed
// interval and requires a pong inside the pong window; any failure
// ends the connection.
func (h *Handler) heartbeat(ctx context.Context, conn *Conn, log zerolog.Logger) error {
	pongs := make(chan struct{}, 1)
	conn.ws.SetPongHandler(func(string) error {
		_ = conn.ws.SetReadDeadline(time.Now().Add(h.opts.ReadWait))
		select {
		case pongs <- struct{}{}:
		default:
		}
		return nil
	})
	_ = conn.ws.SetReadDeadline(time.Now().Add(h.opts.ReadWait))

	// The read pump drains the connection so control frames are
	// processed. Viewers have nothing to say after Hello; data frames
	// are logged and dropped.
	readErr := make(chan error, 1)
	go func() {
		for {
			_, frame, err := conn.ws.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			log.Warn().Int("bytes", len(frame)).Msg("Ignoring unexpected frame from viewer")
		}
	}()

	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case <-ticker.C:
		}

		// Drop any pong left over from the previous round so the
		// window below measures this ping only.
		select {
		case <-pongs:
		default:
		}

		if err := conn.Ping(); err != nil {
			metrics.RecordHeartbeatFailure()
			return err
		}

		window := time.NewTimer(h.opts.PongWindow)
		select {
		case <-pongs:
			window.Stop()
		case <-window.C:
			metrics.RecordHeartbeatFailure()
			return errPongTimeout
		case err := <-readErr:
			window.Stop()
			return err
		case <-ctx.Done():
			window.Stop()
			return ctx.Err()
		}
	}
}
