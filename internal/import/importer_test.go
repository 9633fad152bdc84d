// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package pgimport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/tillsight/internal/config"
	"github.com/tomtom215/tillsight/internal/database"
)

// --- Mock Implementations ---

// mockSource serves pre-sorted rows with keyset paging.
type mockSource struct {
	products []database.Product
	orders   []database.Order
	items    []database.OrderItem

	countErr error
	readErr  error
	block    chan struct{}

	mu     sync.Mutex
	reads  int
	closed bool
}

func (m *mockSource) Count(_ context.Context, table string) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	switch table {
	case TableProducts:
		return int64(len(m.products)), nil
	case TableOrders:
		return int64(len(m.orders)), nil
	default:
		return int64(len(m.items)), nil
	}
}

func page[T any](m *mockSource, rows []T, after *T, limit int, greater func(a, b T) bool) ([]T, error) {
	m.mu.Lock()
	m.reads++
	m.mu.Unlock()
	if m.block != nil {
		<-m.block
	}
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []T
	for _, r := range rows {
		if after != nil && !greater(r, *after) {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockSource) Products(_ context.Context, after *database.Product, limit int) ([]database.Product, error) {
	return page(m, m.products, after, limit, func(a, b database.Product) bool { return a.SKU > b.SKU })
}

func (m *mockSource) Orders(_ context.Context, after *database.Order, limit int) ([]database.Order, error) {
	return page(m, m.orders, after, limit, func(a, b database.Order) bool { return a.OrderID > b.OrderID })
}

func (m *mockSource) OrderItems(_ context.Context, after *database.OrderItem, limit int) ([]database.OrderItem, error) {
	return page(m, m.items, after, limit, func(a, b database.OrderItem) bool {
		if a.OrderID != b.OrderID {
			return a.OrderID > b.OrderID
		}
		return a.SKU > b.SKU
	})
}

func (m *mockSource) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// mockSink records writes. Keys already seen are not counted as new.
type mockSink struct {
	mu       sync.Mutex
	products map[string]bool
	orders   map[string]bool
	items    map[string]bool
	itemErr  error
	writes   int
}

func newMockSink() *mockSink {
	return &mockSink{
		products: make(map[string]bool),
		orders:   make(map[string]bool),
		items:    make(map[string]bool),
	}
}

func insertKeys[T any](s *mockSink, seen map[string]bool, rows []T, key func(T) string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	n := 0
	for _, r := range rows {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			n++
		}
	}
	return n
}

func (s *mockSink) InsertProducts(_ context.Context, rows []database.Product) (int, error) {
	return insertKeys(s, s.products, rows, func(p database.Product) string { return p.SKU }), nil
}

func (s *mockSink) InsertOrders(_ context.Context, rows []database.Order) (int, error) {
	return insertKeys(s, s.orders, rows, func(o database.Order) string { return o.OrderID }), nil
}

func (s *mockSink) InsertOrderItems(_ context.Context, rows []database.OrderItem) (int, error) {
	if s.itemErr != nil {
		return 0, s.itemErr
	}
	return insertKeys(s, s.items, rows, func(i database.OrderItem) string { return i.OrderID + "|" + i.SKU }), nil
}

func newTestSource() *mockSource {
	day := time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC)
	return &mockSource{
		products: []database.Product{
			{SKU: "A", ProductName: "Alpha"},
			{SKU: "B", ProductName: "Beta"},
			{SKU: "C", ProductName: "Gamma"},
		},
		orders: []database.Order{
			{OrderID: "o1", Date: day},
			{OrderID: "o2", Date: day},
			{OrderID: "o3"}, // no date
		},
		items: []database.OrderItem{
			{OrderID: "o1", SKU: "A", Qty: 1, Amount: 100},
			{OrderID: "o1", SKU: "B", Qty: 2, Amount: 50},
			{OrderID: "o2", SKU: ""},
			{OrderID: "o2", SKU: "A", Qty: 1, Amount: 100},
		},
	}
}

func opener(src Source) Opener {
	return func(context.Context) (Source, error) { return src, nil }
}

// --- Tests ---

func TestImporter_Import(t *testing.T) {
	src := newTestSource()
	sink := newMockSink()
	cfg := &config.ImportConfig{BatchSize: 2}

	imp := NewImporter(cfg, opener(src), sink)
	stats, err := imp.Import(context.Background())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if stats.TotalRecords != 10 {
		t.Errorf("TotalRecords = %d, want 10", stats.TotalRecords)
	}
	if stats.Processed != 10 {
		t.Errorf("Processed = %d, want 10", stats.Processed)
	}
	if stats.Imported != 8 {
		t.Errorf("Imported = %d, want 8", stats.Imported)
	}
	if stats.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", stats.Skipped)
	}
	if stats.Errors != 0 {
		t.Errorf("Errors = %d, want 0", stats.Errors)
	}
	if stats.Progress() != 100 {
		t.Errorf("Progress() = %v, want 100", stats.Progress())
	}
	if len(sink.products) != 3 || len(sink.orders) != 2 || len(sink.items) != 3 {
		t.Errorf("sink = %d products, %d orders, %d items", len(sink.products), len(sink.orders), len(sink.items))
	}
	if !src.closed {
		t.Error("source was not closed")
	}
	if imp.IsRunning() {
		t.Error("IsRunning() = true after Import returned")
	}
}

func TestImporter_ReimportSkipsExisting(t *testing.T) {
	src := newTestSource()
	sink := newMockSink()
	imp := NewImporter(&config.ImportConfig{BatchSize: 100}, opener(src), sink)

	if _, err := imp.Import(context.Background()); err != nil {
		t.Fatalf("first Import() error = %v", err)
	}
	stats, err := imp.Import(context.Background())
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if stats.Imported != 0 {
		t.Errorf("Imported = %d, want 0", stats.Imported)
	}
	if stats.Skipped != 10 {
		t.Errorf("Skipped = %d, want 10", stats.Skipped)
	}
}

func TestImporter_DryRun(t *testing.T) {
	sink := newMockSink()
	imp := NewImporter(&config.ImportConfig{BatchSize: 2, DryRun: true}, opener(newTestSource()), sink)

	stats, err := imp.Import(context.Background())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if stats.Imported != 8 {
		t.Errorf("Imported = %d, want 8", stats.Imported)
	}
	if !stats.DryRun {
		t.Error("DryRun = false")
	}
	if sink.writes != 0 {
		t.Errorf("sink writes = %d, want 0", sink.writes)
	}
}

func TestImporter_WriteErrorContinues(t *testing.T) {
	sink := newMockSink()
	sink.itemErr = errors.New("disk full")
	imp := NewImporter(&config.ImportConfig{BatchSize: 100}, opener(newTestSource()), sink)

	stats, err := imp.Import(context.Background())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if stats.Errors != 3 {
		t.Errorf("Errors = %d, want 3", stats.Errors)
	}
	if stats.Imported != 5 {
		t.Errorf("Imported = %d, want 5", stats.Imported)
	}
}

func TestImporter_SourceErrors(t *testing.T) {
	tests := []struct {
		name string
		open Opener
	}{
		{
			name: "open fails",
			open: func(context.Context) (Source, error) { return nil, errors.New("refused") },
		},
		{
			name: "count fails",
			open: opener(&mockSource{countErr: errors.New("no table")}),
		},
		{
			name: "read fails",
			open: opener(&mockSource{readErr: errors.New("timeout")}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imp := NewImporter(&config.ImportConfig{}, tt.open, newMockSink())
			if _, err := imp.Import(context.Background()); err == nil {
				t.Fatal("Import() error = nil, want error")
			}
			summary := imp.Summary()
			if summary.Status != "failed" {
				t.Errorf("Status = %q, want failed", summary.Status)
			}
			if summary.LastError == "" {
				t.Error("LastError is empty")
			}
		})
	}
}

func TestImporter_AlreadyRunningAndStop(t *testing.T) {
	src := newTestSource()
	src.block = make(chan struct{})
	imp := NewImporter(&config.ImportConfig{BatchSize: 1}, opener(src), newMockSink())

	if err := imp.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Stop() before start = %v, want ErrNotRunning", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := imp.Import(context.Background())
		done <- err
	}()

	deadline := time.Now().Add(5 * time.Second)
	for !imp.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("import never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := imp.Import(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Import() = %v, want ErrAlreadyRunning", err)
	}
	if got := imp.Summary().Status; got != "running" {
		t.Errorf("Status = %q, want running", got)
	}

	if err := imp.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	close(src.block)

	select {
	case err := <-done:
		if !errors.Is(err, ErrCanceled) {
			t.Errorf("Import() = %v, want ErrCanceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("import did not stop")
	}
}

func TestImporter_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	imp := NewImporter(&config.ImportConfig{}, opener(newTestSource()), newMockSink())
	if _, err := imp.Import(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Import() = %v, want context.Canceled", err)
	}
}

func TestImporter_RateLimiter(t *testing.T) {
	tests := []struct {
		perSecond float64
		wantInf   bool
	}{
		{0, true},
		{-1, true},
		{2.5, false},
	}
	for _, tt := range tests {
		imp := NewImporter(&config.ImportConfig{BatchesPerSecond: tt.perSecond}, nil, nil)
		lim := imp.newLimiter()
		if isInf := lim.Limit() == rate.Inf; isInf != tt.wantInf {
			t.Errorf("BatchesPerSecond=%v: limit %v, want inf=%v", tt.perSecond, lim.Limit(), tt.wantInf)
		}
	}
}

func TestImporter_GetStatsIdle(t *testing.T) {
	imp := NewImporter(&config.ImportConfig{DryRun: true}, nil, nil)
	summary := imp.Summary()
	if summary.Status != "idle" {
		t.Errorf("Status = %q, want idle", summary.Status)
	}
	if !summary.DryRun {
		t.Error("DryRun = false")
	}
}

func TestImportStats_ToSummary(t *testing.T) {
	stats := &ImportStats{
		TotalRecords: 100,
		Processed:    150,
		StartTime:    time.Now().Add(-10 * time.Second),
	}
	summary := stats.ToSummary(true)
	if summary.Progress != 100 {
		t.Errorf("Progress = %v, want 100 (capped)", summary.Progress)
	}
	if summary.EstimatedRemain != 0 {
		t.Errorf("EstimatedRemain = %v, want 0", summary.EstimatedRemain)
	}

	stats.Processed = 50
	summary = stats.ToSummary(true)
	if summary.EstimatedRemain <= 0 {
		t.Errorf("EstimatedRemain = %v, want > 0", summary.EstimatedRemain)
	}

	stats.EndTime = stats.StartTime.Add(5 * time.Second)
	if got := stats.ToSummary(false).Status; got != "completed" {
		t.Errorf("Status = %q, want completed", got)
	}
}
