// Command validate checks banter assets from the command line. YAML
// files are treated as tuning files and checked against the known
// trigger types; any other file is treated as a raw model transcript
// and run through the response parser and validator against a sample
// party.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jwebster45206/banter-engine/internal/config"
	"github.com/jwebster45206/banter-engine/pkg/actor"
	"github.com/jwebster45206/banter-engine/pkg/banter"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <tuning.yaml | transcript.txt> [speaker]\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	var err error
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		err = validateTuning(filename)
	default:
		speaker := "Gilda"
		if len(os.Args) > 2 {
			speaker = os.Args[2]
		}
		err = validateTranscript(filename, speaker)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
}

func validateTuning(filename string) error {
	fmt.Printf("Validating tuning file %s...\n", filename)

	tuning, err := config.LoadTuning(filename)
	if err != nil {
		return err
	}

	cfg := tuning.TriggerConfig()
	if cfg.Cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive, got %s", cfg.Cooldown)
	}
	if cfg.AmbientInterval <= 0 {
		return fmt.Errorf("ambient interval must be positive, got %s", cfg.AmbientInterval)
	}
	if cfg.StepThreshold <= 0 {
		return fmt.Errorf("step threshold must be positive, got %d", cfg.StepThreshold)
	}

	w := tuning.Weights()
	if w.Solo < 0 || w.TwoPerson < 0 || w.Group < 0 {
		return fmt.Errorf("exchange weights must not be negative: %+v", w)
	}
	if w.Solo+w.TwoPerson+w.Group <= 0 {
		return fmt.Errorf("exchange weights must sum to a positive total")
	}

	fmt.Println("Tuning file is valid!")
	fmt.Printf("  cooldown: %s, ambient interval: %s, step threshold: %d\n",
		cfg.Cooldown, cfg.AmbientInterval, cfg.StepThreshold)
	for t, p := range cfg.Priorities {
		fmt.Printf("  priority %-18s %d\n", t, p)
	}
	return nil
}

// sampleParty is the roster transcripts are validated against.
var sampleParty = []actor.Character{
	{Name: "Gilda", Race: "dwarf", Class: "cleric", Level: 3, HP: 24, MaxHP: 24},
	{Name: "Borin", Race: "human", Class: "fighter", Level: 3, HP: 30, MaxHP: 30},
	{Name: "Lyra", Race: "elf", Class: "mage", Level: 3, HP: 18, MaxHP: 18},
	{Name: "Bramble", Race: "halfling", Class: "rogue", Level: 3, HP: 20, MaxHP: 20},
}

func validateTranscript(filename, speaker string) error {
	fmt.Printf("Validating transcript %s (speaker %s)...\n", filename, speaker)

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	resp, err := banter.ParseResponse(string(data), speaker, time.Now().UTC(), log)
	if err != nil {
		return fmt.Errorf("transcript did not parse: %w", err)
	}

	var speakerChar actor.Character
	for _, m := range sampleParty {
		if m.Name == speaker {
			speakerChar = m
			break
		}
	}
	if speakerChar.Name == "" {
		speakerChar = actor.Character{Name: speaker, HP: 1, MaxHP: 1}
	}

	ctx := &banter.Context{
		Tier:    banter.TierStandard,
		Speaker: speakerChar,
		Party: &banter.PartyInfo{
			Size:       len(sampleParty),
			AliveCount: len(sampleParty),
			Members:    sampleParty,
		},
	}

	validator := banter.NewValidator(log)
	if errs := validator.Validate(resp, ctx); len(errs) > 0 {
		var sb strings.Builder
		sb.WriteString("transcript failed validation:\n")
		for _, e := range errs {
			sb.WriteString("  - " + e + "\n")
		}
		return fmt.Errorf("%s", strings.TrimRight(sb.String(), "\n"))
	}

	fmt.Println("Transcript is valid!")
	fmt.Printf("  exchange type: %s, participants: %d, lines: %d\n",
		resp.ExchangeType, len(resp.Participants), len(resp.Lines))
	return nil
}
