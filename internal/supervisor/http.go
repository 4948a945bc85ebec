// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vitrine-io/vitrine/internal/logging"
)

// shutdownGrace bounds how long in-flight requests may run after the
// context ends.
const shutdownGrace = 10 * time.Second

// HTTPService runs an http.Server as a suture service.
type HTTPService struct {
	srv *http.Server
}

// NewHTTPService wraps the handler in a server listening on addr.
func NewHTTPService(addr string, handler http.Handler) *HTTPService {
	return &HTTPService{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// String names the service in supervisor logs.
func (s *HTTPService) String() string {
	return "http-server"
}

// Serve listens until the context ends, then shuts down gracefully.
func (s *HTTPService) Serve(ctx context.Context) error {
	log := logging.WithComponent("http")
	log.Info().Str("address", s.srv.Addr).Msg("HTTP server listening")

	errc := make(chan error, 1)
	go func() {
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("HTTP shutdown did not finish cleanly")
		}
		<-errc
		return ctx.Err()
	}
}
