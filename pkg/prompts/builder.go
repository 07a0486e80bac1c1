package prompts

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jwebster45206/banter-engine/pkg/actor"
	"github.com/jwebster45206/banter-engine/pkg/banter"
	"github.com/jwebster45206/banter-engine/pkg/trigger"
)

// recentEntryThreshold is how long after dungeon entry the "recently
// entered" hint remains in the prompt.
const recentEntryThreshold = 20 * time.Minute

// Weights drive the exchange-type roulette. They need not sum to 1;
// only their relative sizes matter.
type Weights struct {
	Solo      float64 `yaml:"solo"`
	TwoPerson float64 `yaml:"two_person"`
	Group     float64 `yaml:"group"`
}

// DefaultWeights returns the exchange-type weights used when no tuning
// file overrides them.
func DefaultWeights() Weights {
	return Weights{Solo: 0.3, TwoPerson: 0.45, Group: 0.25}
}

// Metadata describes the built prompt.
type Metadata struct {
	ExchangeType banter.ExchangeType
	// EstimatedTokens is a crude 4-characters-per-token heuristic.
	EstimatedTokens int
}

// Prompt is the system/user pair sent to the generation endpoint.
type Prompt struct {
	System   string
	User     string
	Metadata Metadata
}

// SelectExchangeType picks an exchange shape constrained by party
// size: a lone speaker always muses solo, a pair never holds a group
// conversation. Selection is a cumulative-weight roulette; rounding
// falls through to the last option. The total weight must be positive.
func SelectExchangeType(partySize int, w Weights, rng *rand.Rand) (banter.ExchangeType, error) {
	if partySize <= 1 {
		return banter.ExchangeSolo, nil
	}

	options := []banter.ExchangeType{banter.ExchangeSolo, banter.ExchangeTwoPerson}
	weights := []float64{w.Solo, w.TwoPerson}
	if partySize >= 3 {
		options = append(options, banter.ExchangeGroup)
		weights = append(weights, w.Group)
	}

	var total float64
	for _, wt := range weights {
		if wt < 0 {
			return "", fmt.Errorf("exchange weight must not be negative: %v", wt)
		}
		total += wt
	}
	if total <= 0 {
		return "", fmt.Errorf("exchange weights must sum to a positive total")
	}

	roll := rng.Float64() * total
	var cumulative float64
	for i, wt := range weights {
		cumulative += wt
		if roll < cumulative {
			return options[i], nil
		}
	}
	return options[len(options)-1], nil
}

// Build turns a context snapshot into the full prompt pair. The
// exchange type is chosen here and recorded in the metadata; the
// parsed response may still reclassify itself by participant count.
func Build(ctx *banter.Context, w Weights, rng *rand.Rand) (Prompt, error) {
	exchangeType, err := SelectExchangeType(ctx.PartySize(), w, rng)
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to select exchange type: %w", err)
	}

	system := buildSystemPrompt()
	user := buildUserPrompt(ctx, exchangeType)

	return Prompt{
		System: system,
		User:   user,
		Metadata: Metadata{
			ExchangeType:    exchangeType,
			EstimatedTokens: (len(system) + len(user)) / 4,
		},
	}, nil
}

func buildSystemPrompt() string {
	return strings.Join([]string{
		systemIntro,
		personalityPrompt,
		examplesPrompt,
		rulesPrompt,
	}, "\n\n")
}

func buildUserPrompt(ctx *banter.Context, exchangeType banter.ExchangeType) string {
	var sb strings.Builder

	writeSpeaker(&sb, ctx.Speaker)
	writeLocation(&sb, ctx.Location)
	writeTrigger(&sb, ctx.Trigger)

	if ctx.Location.TimeInDungeon > 0 && ctx.Location.TimeInDungeon < recentEntryThreshold {
		fmt.Fprintf(&sb, "The party entered the dungeon only %d minutes ago.\n",
			int(ctx.Location.TimeInDungeon.Minutes()))
	}

	if ctx.Party != nil {
		writeParty(&sb, ctx)
	}
	if len(ctx.Recent) > 0 {
		sb.WriteString("\nRecent events:\n")
		for _, e := range ctx.Recent {
			fmt.Fprintf(&sb, "- %s\n", e.Details)
		}
	}

	sb.WriteString("\n")
	switch exchangeType {
	case banter.ExchangeTwoPerson:
		fmt.Fprintf(&sb, closingTwo, ctx.Speaker.Name)
	case banter.ExchangeGroup:
		fmt.Fprintf(&sb, closingGroup, ctx.Speaker.Name)
	default:
		fmt.Fprintf(&sb, closingSolo, ctx.Speaker.Name)
	}

	return sb.String()
}

func writeSpeaker(sb *strings.Builder, speaker actor.Character) {
	fmt.Fprintf(sb, "The speaker is %s.\n", speaker.Identity())
	writeTraits(sb, speaker.Traits, "")
	if len(speaker.StatusEffects) > 0 {
		fmt.Fprintf(sb, "%s is currently %s.\n", speaker.Name, strings.Join(speaker.StatusEffects, ", "))
	}
}

func writeTraits(sb *strings.Builder, t actor.Traits, indent string) {
	fmt.Fprintf(sb, "%s- Temperament: %s (%s)\n", indent, t.Temperament, t.Gloss("Temperament"))
	fmt.Fprintf(sb, "%s- Social: %s (%s)\n", indent, t.Social, t.Gloss("Social"))
	fmt.Fprintf(sb, "%s- Outlook: %s (%s)\n", indent, t.Outlook, t.Gloss("Outlook"))
	fmt.Fprintf(sb, "%s- Speech: %s (%s)\n", indent, t.Speech, t.Gloss("Speech"))
}

func writeLocation(sb *strings.Builder, loc banter.LocationInfo) {
	if loc.IsDark {
		fmt.Fprintf(sb, "The party is on floor %d of the dungeon, in a dark zone.\n", loc.Floor)
		return
	}
	fmt.Fprintf(sb, "The party is on floor %d of the dungeon.\n", loc.Floor)
}

// writeTrigger adds the trigger description line. Ambient triggers are
// suppressed: idle chatter needs no stated reason.
func writeTrigger(sb *strings.Builder, t trigger.Trigger) {
	switch t.Type {
	case trigger.AmbientTime, trigger.AmbientDistance:
		return
	}
	if t.Details != "" {
		fmt.Fprintf(sb, "What just happened: %s.\n", strings.TrimSuffix(t.Details, "."))
	}
}

func writeParty(sb *strings.Builder, ctx *banter.Context) {
	party := ctx.Party

	sb.WriteString("\nThe rest of the party:\n")
	for _, m := range party.Members {
		if m.Name == ctx.Speaker.Name {
			continue
		}
		fmt.Fprintf(sb, "%s", m.Identity())
		if !m.Alive() {
			sb.WriteString(" (dead)")
		}
		sb.WriteString("\n")
		writeTraits(sb, m.Traits, "  ")
		if len(m.StatusEffects) > 0 {
			fmt.Fprintf(sb, "  %s is currently %s.\n", m.Name, strings.Join(m.StatusEffects, ", "))
		}
	}

	if party.AvgHPPercent > 0 && party.AvgHPPercent <= 0.5 {
		sb.WriteString("The party is in rough shape; wounds are showing.\n")
	}
	if party.AnyStatusEffect {
		sb.WriteString("At least one member suffers from an affliction.\n")
	}
}
