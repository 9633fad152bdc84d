// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPServer is the lifecycle subset of *http.Server.
//
// Taking the interface instead of the concrete server lets tests drive
// HTTPServerService with a fake that never opens a socket.
//
// Satisfied by *http.Server from net/http:
//   - ListenAndServe() error
//   - Shutdown(ctx context.Context) error
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs an HTTP server as a supervised service.
//
// It bridges the blocking ListenAndServe call and suture's context-driven
// Serve:
//
//  1. ListenAndServe runs in its own goroutine
//  2. Serve waits for the supervisor to cancel ctx or for the server to fail
//  3. On cancel, Shutdown drains open connections within shutdownTimeout
//
// A server that fails to bind returns an error, so suture restarts it with
// backoff.
//
// Example:
//
//	server := &http.Server{Addr: ":8000", Handler: router}
//	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// NewHTTPServerService wraps server.
//
// Parameters:
//   - server: usually an *http.Server with Addr and Handler set
//   - shutdownTimeout: how long Shutdown waits for in-flight requests such as
//     a slow executive summary; a non-positive value means 10s
//
// Returns:
//   - Service named "http-server" in supervisor logs
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// Serve implements suture.Service.
//
// This method:
//  1. Starts the server (ListenAndServe blocks, so in a goroutine)
//  2. Waits for ctx cancellation or a server error
//  3. On cancellation, shuts down with a fresh deadline and waits for the
//     server goroutine to exit
//
// Returns:
//   - wrapped error if the server fails or shutdown times out
//   - ctx.Err() after a graceful shutdown
//   - nil if the server was closed from outside
//
// http.ErrServerClosed is expected on shutdown and is not reported.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already done, so shutdown gets a fresh deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}

		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer; suture uses it to name the service in logs.
func (h *HTTPServerService) String() string {
	return h.name
}
