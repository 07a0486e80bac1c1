package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	WithError(log, errors.New("dungeon collapsed")).Warn("generation attempt failed", "attempt", 1)

	out := buf.String()
	if !strings.Contains(out, "error=\"dungeon collapsed\"") {
		t.Errorf("expected error attribute in output, got %q", out)
	}
	if !strings.Contains(out, "attempt=1") {
		t.Errorf("expected attempt attribute in output, got %q", out)
	}
}
