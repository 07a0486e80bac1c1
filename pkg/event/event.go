// Package event tracks recently observed game events in a bounded,
// time-decayed buffer. Domain code records deaths, dark-zone entries,
// combat victories, and treasure finds; the trigger detector and
// context builder read them back.
package event

import (
	"fmt"
	"time"
)

// Type identifies the kind of game event.
type Type string

const (
	CharacterDeath Type = "character_death"
	DarkZoneEntry  Type = "dark_zone_entry"
	CombatVictory  Type = "combat_victory"
	TreasureFound  Type = "treasure_found"
)

// Event is a single observed game event. CharacterName is set when the
// event concerns a specific party member, so downstream code never has
// to re-parse it out of the Details prose.
type Event struct {
	Type          Type      `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	CharacterName string    `json:"character_name,omitempty"`
	Details       string    `json:"details"`
	Acknowledged  bool      `json:"acknowledged"`
}

func deathDetails(name string) string {
	return fmt.Sprintf("%s has died", name)
}

func darkZoneDetails(floor int) string {
	return fmt.Sprintf("The party stepped into darkness on floor %d", floor)
}

func victoryDetails(foe string) string {
	return fmt.Sprintf("The party defeated %s", foe)
}

func treasureDetails(item string) string {
	return fmt.Sprintf("The party found %s", item)
}
