package banter

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseResponse_AttributedLines(t *testing.T) {
	raw := "Gilda: \"The dark presses in.\"\nThrok: Keep moving.\n"
	resp, err := ParseResponse(raw, "Gilda", time.Now(), discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(resp.Lines))
	}
	if resp.Lines[0].CharacterName != "Gilda" || resp.Lines[0].Text != "The dark presses in." {
		t.Errorf("unexpected first line: %+v", resp.Lines[0])
	}
	if resp.Lines[1].CharacterName != "Throk" {
		t.Errorf("unexpected second speaker: %q", resp.Lines[1].CharacterName)
	}
}

func TestParseResponse_ColonlessLineFallsBackToSpeaker(t *testing.T) {
	resp, err := ParseResponse("A long sigh echoes down the corridor.", "Bramble", time.Now(), discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Lines[0].CharacterName != "Bramble" {
		t.Errorf("expected fallback to Bramble, got %q", resp.Lines[0].CharacterName)
	}
	if resp.ExchangeType != ExchangeSolo {
		t.Errorf("expected solo, got %s", resp.ExchangeType)
	}
}

func TestParseResponse_QuoteStripping(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`Gilda: "Quiet now."`, "Quiet now."},
		{`Gilda: 'Quiet now.'`, "Quiet now."},
		{`Gilda: “Quiet now.”`, "Quiet now."},
		{`Gilda: "He said "run"."`, `He said "run".`}, // single layer only
		{`Gilda: "Mismatched'`, `"Mismatched'`},
	}
	for _, tt := range tests {
		resp, err := ParseResponse(tt.raw, "Gilda", time.Now(), discardLogger())
		if err != nil {
			t.Fatalf("ParseResponse(%q): %v", tt.raw, err)
		}
		if resp.Lines[0].Text != tt.want {
			t.Errorf("ParseResponse(%q) text = %q, want %q", tt.raw, resp.Lines[0].Text, tt.want)
		}
	}
}

func TestParseResponse_DropsEmptyDialogue(t *testing.T) {
	raw := "Gilda: \"\"\nThrok: Something worth saying.\n"
	resp, err := ParseResponse(raw, "Gilda", time.Now(), discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Lines) != 1 {
		t.Fatalf("expected the empty line dropped, got %d lines", len(resp.Lines))
	}
	if resp.Lines[0].CharacterName != "Throk" {
		t.Errorf("expected Throk, got %q", resp.Lines[0].CharacterName)
	}
}

func TestParseResponse_NoUsableLines(t *testing.T) {
	if _, err := ParseResponse("\n  \nGilda: \"\"\n", "Gilda", time.Now(), discardLogger()); err == nil {
		t.Fatal("expected error when nothing survives parsing")
	}
}

func TestParseResponse_ExchangeTypeDerivedFromParticipants(t *testing.T) {
	// Two distinct participants always classify as two_person no
	// matter what the prompt asked for.
	raw := "Gilda: One.\nThrok: Two.\nGilda: Three."
	resp, err := ParseResponse(raw, "Gilda", time.Now(), discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ExchangeType != ExchangeTwoPerson {
		t.Errorf("expected two_person, got %s", resp.ExchangeType)
	}
	if len(resp.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(resp.Participants))
	}
	// First-seen order preserved.
	if resp.Participants[0] != "Gilda" || resp.Participants[1] != "Throk" {
		t.Errorf("unexpected participant order: %v", resp.Participants)
	}

	raw = "Gilda: One.\nThrok: Two.\nBramble: Three.\nGilda: Four."
	resp, err = ParseResponse(raw, "Gilda", time.Now(), discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ExchangeType != ExchangeGroup {
		t.Errorf("expected group with 3 participants, got %s", resp.ExchangeType)
	}
}
