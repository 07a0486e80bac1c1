package banter

import (
	"time"

	"github.com/jwebster45206/banter-engine/pkg/actor"
	"github.com/jwebster45206/banter-engine/pkg/event"
	"github.com/jwebster45206/banter-engine/pkg/trigger"
)

// Tier names the three progressively richer context shapes. Richer
// tiers carry more game state into the prompt; the tier bounds prompt
// size per trigger type.
type Tier string

const (
	TierMinimal  Tier = "minimal"
	TierStandard Tier = "standard"
	TierRich     Tier = "rich"
)

// TierFor maps a trigger type to its context tier. Deaths warrant the
// full picture; warnings get the party; ambient chatter stays cheap.
func TierFor(t trigger.Type) Tier {
	switch t {
	case trigger.CharacterDeath:
		return TierRich
	case trigger.LowHPWarning, trigger.DarkZoneEntry:
		return TierStandard
	case trigger.AmbientTime, trigger.AmbientDistance:
		return TierMinimal
	default:
		return TierMinimal
	}
}

// estimatedTokens returns the rough token bucket logged per tier.
// Guidance only, not measured.
func (t Tier) estimatedTokens() int {
	switch t {
	case TierRich:
		return 4000
	case TierStandard:
		return 2000
	default:
		return 500
	}
}

// PartyInfo is the aggregate party block included in standard and rich
// contexts.
type PartyInfo struct {
	Size            int
	AliveCount      int
	AvgHPPercent    float64
	AvgMPPercent    float64
	AnyStatusEffect bool
	Members         []actor.Character
}

// LocationInfo describes where the party currently stands.
type LocationInfo struct {
	Floor         int
	IsDark        bool
	TimeInDungeon time.Duration
}

// Context is the immutable snapshot a single generation attempt is
// built from. Party is nil for minimal contexts; RecentEvents is nil
// below rich. A fresh context is built per attempt; the speaker is
// re-sampled each time.
type Context struct {
	Tier     Tier
	Trigger  trigger.Trigger
	Speaker  actor.Character
	Location LocationInfo
	Party    *PartyInfo
	Recent   []event.Event
}

// PartySize returns the effective party size used for exchange-type
// selection: the party block when present, otherwise just the speaker.
func (c *Context) PartySize() int {
	if c.Party == nil {
		return 1
	}
	return c.Party.AliveCount
}

// KnownNames returns the names dialogue may be attributed to: the
// speaker plus, when present, every party member.
func (c *Context) KnownNames() map[string]bool {
	names := map[string]bool{c.Speaker.Name: true}
	if c.Party != nil {
		for _, m := range c.Party.Members {
			names[m.Name] = true
		}
	}
	return names
}
