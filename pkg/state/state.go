// Package state defines the narrow, read-only view of game state the
// banter subsystem consumes. The full game owns party, dungeon, and
// message-log data; this package names only the fields the pipeline
// reads so the subsystem stays decoupled from the game-state shape.
package state

import (
	"time"

	"github.com/jwebster45206/banter-engine/pkg/actor"
)

// DungeonEventDarkness marks a tile as a dark zone.
const DungeonEventDarkness = "darkness"

// DungeonEvent is a fixture placed on a dungeon tile (darkness, traps,
// stairs). Only darkness is read here.
type DungeonEvent struct {
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// MessageLog is the in-game log banter lines are appended to.
type MessageLog interface {
	Add(text string)
}

// View is the read-only snapshot of live game state passed into the
// pipeline on every tick. The game loop constructs it; nothing in this
// subsystem mutates it except the MessageLog append at presentation.
type View struct {
	Party  []actor.Character
	PartyX int
	PartyY int

	Floor            int
	DungeonEvents    map[int][]DungeonEvent // keyed by floor index
	DungeonEnteredAt time.Time

	MessageLog MessageLog
}

// AliveMembers returns the party members that can still act.
func (v *View) AliveMembers() []actor.Character {
	alive := make([]actor.Character, 0, len(v.Party))
	for _, m := range v.Party {
		if m.Alive() {
			alive = append(alive, m)
		}
	}
	return alive
}

// IsDarkTile reports whether the party's current tile carries a
// darkness event on the current floor. Missing dungeon data means
// not dark.
func (v *View) IsDarkTile() bool {
	events, ok := v.DungeonEvents[v.Floor]
	if !ok {
		return false
	}
	for _, e := range events {
		if e.Type == DungeonEventDarkness && e.X == v.PartyX && e.Y == v.PartyY {
			return true
		}
	}
	return false
}
