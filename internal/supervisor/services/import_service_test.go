// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pgimport "github.com/tomtom215/tillsight/internal/import"
)

type mockImporter struct {
	mu        sync.Mutex
	running   bool
	calls     atomic.Int32
	stopCalls atomic.Int32
	err       error
	release   chan struct{}
}

func (m *mockImporter) Import(ctx context.Context) (*pgimport.ImportStats, error) {
	m.mu.Lock()
	m.running = true
	release := m.release
	m.mu.Unlock()
	m.calls.Add(1)
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &pgimport.ImportStats{Imported: 3}, nil
}

func (m *mockImporter) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *mockImporter) Summary() *pgimport.ProgressSummary {
	status := "idle"
	if m.IsRunning() {
		status = "running"
	}
	return &pgimport.ProgressSummary{Status: status}
}

func (m *mockImporter) Stop() error {
	m.stopCalls.Add(1)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestImportService_AutoStart(t *testing.T) {
	imp := &mockImporter{}
	svc := NewImportService(imp, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	waitFor(t, func() bool { return imp.calls.Load() == 1 })
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestImportService_OnDemand(t *testing.T) {
	imp := &mockImporter{err: errors.New("connection refused")}
	svc := NewImportService(imp, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	if got := imp.calls.Load(); got != 0 {
		t.Fatalf("Import called %d times before Trigger", got)
	}

	// A failed run leaves the service ready for another trigger.
	for want := int32(1); want <= 2; want++ {
		if err := svc.Trigger(); err != nil {
			t.Fatalf("Trigger() error = %v", err)
		}
		waitFor(t, func() bool { return imp.calls.Load() == want && !imp.IsRunning() })
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestImportService_TriggerWhileRunning(t *testing.T) {
	imp := &mockImporter{release: make(chan struct{})}
	svc := NewImportService(imp, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	if err := svc.Trigger(); err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	waitFor(t, imp.IsRunning)

	if err := svc.Trigger(); !errors.Is(err, pgimport.ErrAlreadyRunning) {
		t.Errorf("Trigger() while running = %v, want ErrAlreadyRunning", err)
	}
	if got := svc.Status().Status; got != "running" {
		t.Errorf("Status() = %q, want running", got)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if svc.String() != "pg-import" {
		t.Errorf("String() = %q", svc.String())
	}
}
