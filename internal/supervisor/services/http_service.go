// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/shadowscan/internal/logging"
)

// DefaultShutdownTimeout is used when server.shutdown_timeout is not positive.
const DefaultShutdownTimeout = 10 * time.Second

// ErrListenerClosed is returned when the listener stops without the
// supervisor asking it to. Suture restarts the service.
var ErrListenerClosed = errors.New("api listener closed unexpectedly")

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs the API listener in the supervisor's API layer.
// When the tree stops it drains in-flight requests for at most drainTimeout.
type HTTPServerService struct {
	srv          HTTPServer
	drainTimeout time.Duration
}

// NewHTTPServerService wraps srv. shutdownTimeout is normally
// cfg.Server.ShutdownTimeout.
func NewHTTPServerService(srv HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &HTTPServerService{srv: srv, drainTimeout: shutdownTimeout}
}

// DrainTimeout reports the effective shutdown budget.
func (h *HTTPServerService) DrainTimeout() time.Duration {
	return h.drainTimeout
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	listenErr := make(chan error, 1)
	go func() { listenErr <- h.srv.ListenAndServe() }()

	select {
	case err := <-listenErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			logging.Warn().Str("service", h.String()).Msg("API listener closed outside shutdown")
			return ErrListenerClosed
		}
		logging.Error().Err(err).Str("service", h.String()).Msg("API listener failed")
		return fmt.Errorf("api listener: %w", err)
	case <-ctx.Done():
	}

	// Keep request-scoped values such as the correlation id, drop the
	// cancellation that triggered the stop.
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.drainTimeout)
	defer cancel()

	start := time.Now()
	err := h.srv.Shutdown(drainCtx)
	<-listenErr
	if err != nil {
		logging.Warn().Err(err).
			Str("service", h.String()).
			Dur("drain_timeout", h.drainTimeout).
			Msg("API server did not drain in time")
		return fmt.Errorf("api shutdown: %w", err)
	}
	logging.Info().
		Str("service", h.String()).
		Dur("drained_in", time.Since(start)).
		Msg("API server stopped")
	return ctx.Err()
}

func (h *HTTPServerService) String() string {
	return "http-server"
}
