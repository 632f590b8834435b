// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Levels(t *testing.T) {
	tests := []struct {
		name  string
		min   zerolog.Level
		level slog.Level
		want  bool
	}{
		{"debug allowed at debug", zerolog.DebugLevel, slog.LevelDebug, true},
		{"debug blocked at info", zerolog.InfoLevel, slog.LevelDebug, false},
		{"warn allowed at info", zerolog.InfoLevel, slog.LevelWarn, true},
		{"error blocked when disabled", zerolog.Disabled, slog.LevelError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSlogHandler(zerolog.New(nil).Level(tt.min))
			if got := h.Enabled(context.Background(), tt.level); got != tt.want {
				t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestSlogHandler_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(zerolog.New(&buf))

	logger.With("service", "jobs-engine").
		WithGroup("restart").
		Warn("service restarted",
			"count", 3,
			"backoff", 2*time.Second,
			"err", errors.New("boom"),
			slog.Group("cause", "kind", "panic"))

	out := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"message":"service restarted"`,
		`"service":"jobs-engine"`,
		`"restart.count":3`,
		`"restart.err":"boom"`,
		`"restart.cause.kind":"panic"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestSlogHandler_DisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(zerolog.New(&buf).Level(zerolog.ErrorLevel))
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("output = %q, want nothing", buf.String())
	}
}
