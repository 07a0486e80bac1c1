package actor

import "fmt"

// Temperament is the emotional-register axis of a character's personality.
type Temperament string

// Social is the interpersonal-manner axis.
type Social string

// Outlook is the worldview axis.
type Outlook string

// SpeechStyle is the diction axis.
type SpeechStyle string

const (
	TemperamentFiery    Temperament = "fiery"
	TemperamentStoic    Temperament = "stoic"
	TemperamentGentle   Temperament = "gentle"
	TemperamentBrooding Temperament = "brooding"

	SocialOutgoing  Social = "outgoing"
	SocialReserved  Social = "reserved"
	SocialBlunt     Social = "blunt"
	SocialCourteous Social = "courteous"

	OutlookOptimist   Outlook = "optimist"
	OutlookPessimist  Outlook = "pessimist"
	OutlookPragmatist Outlook = "pragmatist"
	OutlookDreamer    Outlook = "dreamer"

	SpeechPlain   SpeechStyle = "plain"
	SpeechFormal  SpeechStyle = "formal"
	SpeechEarthy  SpeechStyle = "earthy"
	SpeechClipped SpeechStyle = "clipped"
)

// Traits are the four independent personality axes assigned once at
// character creation. They steer word choice in generated dialogue.
type Traits struct {
	Temperament Temperament `json:"temperament"`
	Social      Social      `json:"social"`
	Outlook     Outlook     `json:"outlook"`
	Speech      SpeechStyle `json:"speech"`
}

// trait glosses rendered into prompts so the model knows what each
// value should sound like
var (
	temperamentGlosses = map[Temperament]string{
		TemperamentFiery:    "quick to anger, passionate, acts before thinking",
		TemperamentStoic:    "unshaken, measured, rarely shows emotion",
		TemperamentGentle:   "kind, soothing, slow to judge",
		TemperamentBrooding: "dark moods, dwells on past wrongs",
	}
	socialGlosses = map[Social]string{
		SocialOutgoing:  "talks to everyone, fills silences",
		SocialReserved:  "speaks only when spoken to, keeps thoughts close",
		SocialBlunt:     "says exactly what they think, no cushioning",
		SocialCourteous: "polite, deferential, minds their manners",
	}
	outlookGlosses = map[Outlook]string{
		OutlookOptimist:   "expects things to work out, finds the bright side",
		OutlookPessimist:  "expects the worst, voices doubts",
		OutlookPragmatist: "cares about what works, dismisses sentiment",
		OutlookDreamer:    "head in the clouds, speaks of grand possibilities",
	}
	speechGlosses = map[SpeechStyle]string{
		SpeechPlain:   "simple everyday words, short sentences",
		SpeechFormal:  "proper grammar, full sentences, no contractions",
		SpeechEarthy:  "folksy, concrete, grounded in physical things",
		SpeechClipped: "terse, drops words, rarely more than a phrase",
	}
)

// Gloss returns the human-readable description for a trait value,
// or an empty string for an unknown value.
func (t Traits) Gloss(axis string) string {
	switch axis {
	case "Temperament":
		return temperamentGlosses[t.Temperament]
	case "Social":
		return socialGlosses[t.Social]
	case "Outlook":
		return outlookGlosses[t.Outlook]
	case "Speech":
		return speechGlosses[t.Speech]
	}
	return ""
}

// Character is the slice of a party member this subsystem reads:
// identity, vitals, status, and personality. It is a snapshot value,
// not a live handle into the game's character entity.
type Character struct {
	Name          string   `json:"name"`
	Race          string   `json:"race,omitempty"`
	Class         string   `json:"class,omitempty"`
	Level         int      `json:"level,omitempty"`
	HP            int      `json:"hp"`
	MaxHP         int      `json:"max_hp"`
	MP            int      `json:"mp"`
	MaxMP         int      `json:"max_mp"`
	StatusEffects []string `json:"status_effects,omitempty"`
	Traits        Traits   `json:"traits"`
}

// Alive reports whether the character can still act (and speak).
func (c Character) Alive() bool {
	return c.HP > 0
}

// HPPercent returns current HP as a fraction of max, treating a zero
// max as fully depleted rather than dividing by zero.
func (c Character) HPPercent() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP)
}

// MPPercent returns current MP as a fraction of max, with the same
// zero-max handling as HPPercent.
func (c Character) MPPercent() float64 {
	if c.MaxMP <= 0 {
		return 0
	}
	return float64(c.MP) / float64(c.MaxMP)
}

// Identity returns a one-line description used in prompts,
// e.g. "Gilda, a level 3 dwarf cleric".
func (c Character) Identity() string {
	if c.Race == "" && c.Class == "" {
		return c.Name
	}
	return fmt.Sprintf("%s, a level %d %s %s", c.Name, c.Level, c.Race, c.Class)
}
