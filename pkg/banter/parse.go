package banter

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// quotePairs are the quote characters stripped (one layer only) from
// around dialogue text.
var quotePairs = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'“':  '”',
	'‘':  '’',
}

// ParseResponse turns raw completion text into a structured Response.
// Each non-blank line is split on its first colon into a speaker name
// and dialogue; lines without a colon are attributed to the original
// speaker. Lines whose dialogue is empty after quote-stripping are
// dropped with a log entry. If no line survives, the generation failed.
func ParseResponse(raw string, speaker string, now time.Time, log *slog.Logger) (*Response, error) {
	var (
		lines        []Line
		participants []string
		seen         = map[string]bool{}
	)

	for _, rawLine := range strings.Split(raw, "\n") {
		rawLine = strings.TrimSpace(rawLine)
		if rawLine == "" {
			continue
		}

		name, text := splitSpeaker(rawLine, speaker)
		text = stripQuotes(text)
		if text == "" {
			log.Debug("dropping empty dialogue line", "raw", rawLine)
			continue
		}

		lines = append(lines, Line{CharacterName: name, Text: text})
		if !seen[name] {
			seen[name] = true
			participants = append(participants, name)
		}
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("no usable dialogue lines in generated text")
	}

	return &Response{
		ExchangeType: classify(len(participants)),
		Participants: participants,
		Lines:        lines,
		GeneratedAt:  now,
	}, nil
}

// splitSpeaker splits "Name: dialogue" at the first colon. A line with
// no colon belongs to the fallback speaker.
func splitSpeaker(line, fallback string) (name, text string) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return fallback, strings.TrimSpace(line)
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
}

// stripQuotes removes a single layer of matching leading/trailing
// quote characters.
func stripQuotes(s string) string {
	runes := []rune(s)
	if len(runes) < 2 {
		return s
	}
	if closer, ok := quotePairs[runes[0]]; ok && runes[len(runes)-1] == closer {
		return strings.TrimSpace(string(runes[1 : len(runes)-1]))
	}
	return s
}
