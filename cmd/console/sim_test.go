package main

import (
	"math/rand"
	"testing"

	"github.com/jwebster45206/banter-engine/pkg/event"
)

func newTestSimulation(t *testing.T) *simulation {
	t.Helper()
	sim, err := newSimulation(event.NewTracker(), rand.New(rand.NewSource(1)), &messageLog{})
	if err != nil {
		t.Fatalf("failed to build simulation: %v", err)
	}
	return sim
}

func TestViewSnapshotIsolation(t *testing.T) {
	sim := newTestSimulation(t)
	view := sim.View()

	// Descend mutates the simulation's dungeon map and floor. The
	// snapshot handed to the worker goroutine must not see either.
	sim.Descend()

	if view.Floor != 1 {
		t.Errorf("snapshot floor changed: got %d, want 1", view.Floor)
	}
	if _, ok := view.DungeonEvents[2]; ok {
		t.Error("snapshot dungeon map aliases the live simulation map")
	}

	events := view.DungeonEvents[1]
	if len(events) != darkTilesPerFloor {
		t.Fatalf("expected %d floor events in snapshot, got %d", darkTilesPerFloor, len(events))
	}
	sim.dungeon[1][0].X = -1
	if events[0].X == -1 {
		t.Error("snapshot floor events alias the live slice")
	}
}

func TestViewSnapshotPartyIsolation(t *testing.T) {
	sim := newTestSimulation(t)
	view := sim.View()

	sim.applyDamage(0, sim.party[0].HP)

	if view.Party[0].HP != view.Party[0].MaxHP {
		t.Errorf("snapshot party HP changed: got %d, want %d", view.Party[0].HP, view.Party[0].MaxHP)
	}
	if sim.party[0].HP != 0 {
		t.Errorf("expected live member at 0 HP, got %d", sim.party[0].HP)
	}
}
