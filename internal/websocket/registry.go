// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package websocket

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vitrine-io/vitrine/internal/logging"
	"github.com/vitrine-io/vitrine/internal/metrics"
)

// Registry tracks live viewer connections so shutdown can close them
// all instead of waiting out their read deadlines. It implements
// suture.Service.
type Registry struct {
	mu    sync.Mutex
	conns map[*Conn]struct{}
	log   zerolog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[*Conn]struct{}),
		log:   logging.WithComponent("viewer-registry"),
	}
}

// String names the service in supervisor logs.
func (r *Registry) String() string {
	return "viewer-registry"
}

// Serve blocks until shutdown, then closes every live connection.
func (r *Registry) Serve(ctx context.Context) error {
	<-ctx.Done()
	r.CloseAll()
	return ctx.Err()
}

func (r *Registry) add(c *Conn) {
	r.mu.Lock()
	r.conns[c] = struct{}{}
	r.mu.Unlock()
	metrics.TrackConnection(true)
}

func (r *Registry) remove(c *Conn) {
	r.mu.Lock()
	delete(r.conns, c)
	r.mu.Unlock()
	metrics.TrackConnection(false)
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// CloseAll force-closes every live connection.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	if len(conns) > 0 {
		r.log.Info().Int("connections", len(conns)).Msg("Closing all viewer connections")
	}
	for _, c := range conns {
		c.Close()
	}
}
