// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"context"
	"log/slog"
	"testing"
)

// recordingHandler captures log records for assertions.
type recordingHandler struct {
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestUnappliedPresentOptionsLogged(t *testing.T) {
	h := &recordingHandler{}
	log := slog.New(h)

	o := defaultOptions("test")
	o.msaa = 4
	logUnappliedPresentOptions(log, o)
	if len(h.records) != 1 {
		t.Fatalf("logged %d records, want 1", len(h.records))
	}
	if h.records[0].Level != slog.LevelDebug {
		t.Errorf("level = %v, want Debug", h.records[0].Level)
	}

	h.records = nil
	o.vsync = false
	o.msaa = 0
	logUnappliedPresentOptions(log, o)
	if len(h.records) != 0 {
		t.Errorf("logged %d records with everything off, want 0", len(h.records))
	}
}
