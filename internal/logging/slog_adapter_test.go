// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newBufferedSlog(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { Init(DefaultConfig()) })
	return NewSlogLogger(), &buf
}

func TestSlogHandler_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*slog.Logger)
		level string
	}{
		{"debug", func(l *slog.Logger) { l.Debug("m") }, `"level":"debug"`},
		{"info", func(l *slog.Logger) { l.Info("m") }, `"level":"info"`},
		{"warn", func(l *slog.Logger) { l.Warn("m") }, `"level":"warn"`},
		{"error", func(l *slog.Logger) { l.Error("m") }, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newBufferedSlog(t)
			tt.log(l)
			if !strings.Contains(buf.String(), tt.level) {
				t.Errorf("expected %s, got %q", tt.level, buf.String())
			}
		})
	}
}

func TestSlogHandler_AttrKinds(t *testing.T) {
	l, buf := newBufferedSlog(t)

	l.Info("service restarted",
		slog.String("service", "model-trainer"),
		slog.Int("attempt", 3),
		slog.Bool("backoff", true),
		slog.Float64("ratio", 0.5),
		slog.Duration("wait", 2*time.Second),
	)

	out := buf.String()
	for _, want := range []string{
		`"service":"model-trainer"`,
		`"attempt":3`,
		`"backoff":true`,
		`"ratio":0.5`,
		`"message":"service restarted"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %q", want, out)
		}
	}
}

func TestSlogHandler_GroupsAndAttrs(t *testing.T) {
	l, buf := newBufferedSlog(t)

	l.With("tree", "tillsight").WithGroup("supervisor").Info("event", slog.String("name", "api-layer"))

	out := buf.String()
	if !strings.Contains(out, `"supervisor.tree":"tillsight"`) && !strings.Contains(out, `"tree":"tillsight"`) {
		t.Errorf("expected tree attr, got %q", out)
	}
	if !strings.Contains(out, `"supervisor.name":"api-layer"`) {
		t.Errorf("expected grouped key supervisor.name, got %q", out)
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf).Level(zerolog.WarnLevel))
	t.Cleanup(func() { Init(DefaultConfig()) })

	h := NewSlogHandler()
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled for a warn-level logger")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled for a warn-level logger")
	}
}
