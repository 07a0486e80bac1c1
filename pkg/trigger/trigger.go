// Package trigger decides when a banter-worthy moment exists. The
// detector is polled every game tick with the current game-state view
// and returns at most one trigger per call, subject to a global
// cooldown and priority arbitration among simultaneously-true
// conditions.
package trigger

import "time"

// Type identifies the kind of banter trigger.
type Type string

const (
	CharacterDeath  Type = "character_death"
	LowHPWarning    Type = "low_hp_warning"
	DarkZoneEntry   Type = "dark_zone_entry"
	AmbientTime     Type = "ambient_time"
	AmbientDistance Type = "ambient_distance"
)

// Trigger is a transient banter-worthy moment. It is created by the
// detector (or ForceTrigger), consumed once by the orchestrator, then
// discarded. CharacterName carries the subject of a death trigger so
// the context builder does not have to re-parse the Details prose.
type Trigger struct {
	Type          Type
	Priority      int
	Details       string
	CharacterName string
	FiredAt       time.Time
}

// Config holds the detector's tuning knobs. Values are injected from
// the application's configuration surface.
type Config struct {
	// Cooldown is the minimum interval between fired triggers.
	Cooldown time.Duration

	// AmbientInterval is how long since the last fired trigger before
	// an ambient-time trigger becomes a candidate.
	AmbientInterval time.Duration

	// StepThreshold is how many party steps arm the ambient-distance
	// trigger.
	StepThreshold int

	// Priorities maps trigger types to arbitration priority. Higher
	// wins; ties keep detector insertion order.
	Priorities map[Type]int
}

// DefaultConfig returns the tuning used when no file overrides it.
func DefaultConfig() Config {
	return Config{
		Cooldown:        45 * time.Second,
		AmbientInterval: 3 * time.Minute,
		StepThreshold:   40,
		Priorities: map[Type]int{
			CharacterDeath:  10,
			LowHPWarning:    8,
			DarkZoneEntry:   6,
			AmbientTime:     2,
			AmbientDistance: 2,
		},
	}
}
