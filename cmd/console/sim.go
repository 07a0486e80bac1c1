package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/banter-engine/pkg/actor"
	"github.com/jwebster45206/banter-engine/pkg/event"
	"github.com/jwebster45206/banter-engine/pkg/state"
)

const (
	mapWidth  = 12
	mapHeight = 8

	// darkTilesPerFloor is how many darkness fixtures each floor gets.
	darkTilesPerFloor = 6
)

// messageLog is the in-game log the presenter appends to. The worker
// goroutine writes while the UI tick reads, hence the mutex.
type messageLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *messageLog) Add(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, text)
}

func (l *messageLog) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// simulation is a minimal dungeon crawl that exists to feed the banter
// pipeline realistic state: movement, combat damage, deaths, darkness,
// victories, and treasure.
type simulation struct {
	party  []actor.Character
	sheets map[string]*d20.Actor

	x, y      int
	floor     int
	dungeon   map[int][]state.DungeonEvent
	enteredAt time.Time

	tracker *event.Tracker
	rng     *rand.Rand
	log     *messageLog
}

type memberSpec struct {
	name, race, class string
	level, hp, mp, ac int
	traits            actor.Traits
}

var defaultParty = []memberSpec{
	{
		name: "Gilda", race: "dwarf", class: "cleric", level: 3, hp: 24, mp: 12, ac: 16,
		traits: actor.Traits{
			Temperament: actor.TemperamentStoic,
			Social:      actor.SocialBlunt,
			Outlook:     actor.OutlookPragmatist,
			Speech:      actor.SpeechPlain,
		},
	},
	{
		name: "Borin", race: "human", class: "fighter", level: 3, hp: 30, mp: 0, ac: 17,
		traits: actor.Traits{
			Temperament: actor.TemperamentFiery,
			Social:      actor.SocialOutgoing,
			Outlook:     actor.OutlookOptimist,
			Speech:      actor.SpeechEarthy,
		},
	},
	{
		name: "Lyra", race: "elf", class: "mage", level: 3, hp: 18, mp: 20, ac: 12,
		traits: actor.Traits{
			Temperament: actor.TemperamentGentle,
			Social:      actor.SocialCourteous,
			Outlook:     actor.OutlookDreamer,
			Speech:      actor.SpeechFormal,
		},
	},
	{
		name: "Bramble", race: "halfling", class: "rogue", level: 3, hp: 20, mp: 6, ac: 14,
		traits: actor.Traits{
			Temperament: actor.TemperamentBrooding,
			Social:      actor.SocialReserved,
			Outlook:     actor.OutlookPessimist,
			Speech:      actor.SpeechClipped,
		},
	},
}

func newSimulation(tracker *event.Tracker, rng *rand.Rand, log *messageLog) (*simulation, error) {
	sim := &simulation{
		sheets:    make(map[string]*d20.Actor),
		floor:     1,
		dungeon:   make(map[int][]state.DungeonEvent),
		enteredAt: time.Now(),
		tracker:   tracker,
		rng:       rng,
		log:       log,
	}

	for _, spec := range defaultParty {
		sheet, err := d20.NewActor(spec.name).
			WithHP(spec.hp).
			WithAC(spec.ac).
			Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build combat sheet for %s: %w", spec.name, err)
		}
		sim.sheets[spec.name] = sheet
		sim.party = append(sim.party, actor.Character{
			Name:   spec.name,
			Race:   spec.race,
			Class:  spec.class,
			Level:  spec.level,
			HP:     spec.hp,
			MaxHP:  spec.hp,
			MP:     spec.mp,
			MaxMP:  spec.mp,
			Traits: spec.traits,
		})
	}

	sim.dungeon[sim.floor] = sim.rollDarkTiles()
	sim.log.Add(fmt.Sprintf("The party descends into the dungeon. Floor %d.", sim.floor))
	return sim, nil
}

// View builds the read-only snapshot the pipeline consumes. The party
// and the current floor's events are copied out because the worker
// goroutine reads the snapshot while Move and Descend keep mutating
// the simulation on the UI goroutine.
func (s *simulation) View() *state.View {
	party := make([]actor.Character, len(s.party))
	copy(party, s.party)
	floorEvents := make([]state.DungeonEvent, len(s.dungeon[s.floor]))
	copy(floorEvents, s.dungeon[s.floor])
	return &state.View{
		Party:            party,
		PartyX:           s.x,
		PartyY:           s.y,
		Floor:            s.floor,
		DungeonEvents:    map[int][]state.DungeonEvent{s.floor: floorEvents},
		DungeonEnteredAt: s.enteredAt,
		MessageLog:       s.log,
	}
}

// Move steps the party and rolls for whatever the dungeon throws at
// them on the new tile.
func (s *simulation) Move(dx, dy int) {
	nx, ny := s.x+dx, s.y+dy
	if nx < 0 || nx >= mapWidth || ny < 0 || ny >= mapHeight {
		return
	}
	wasDark := s.isDark(s.x, s.y)
	s.x, s.y = nx, ny

	if s.isDark(s.x, s.y) && !wasDark {
		s.tracker.RecordDarkZoneEntry(s.floor)
		s.log.Add("The torchlight gutters. Darkness presses in.")
	}

	s.rollTile()
}

// Descend moves the party one floor down and rerolls the layout.
func (s *simulation) Descend() {
	s.floor++
	s.x, s.y = 0, 0
	s.dungeon[s.floor] = s.rollDarkTiles()
	s.log.Add(fmt.Sprintf("The party takes the stairs down. Floor %d.", s.floor))
}

// HealAll restores every member to full. Debug convenience.
func (s *simulation) HealAll() {
	for i := range s.party {
		m := &s.party[i]
		if sheet, ok := s.sheets[m.Name]; ok {
			_ = sheet.SetHP(m.MaxHP)
		}
		m.HP = m.MaxHP
		m.MP = m.MaxMP
		m.StatusEffects = nil
	}
	s.log.Add("A warm light washes over the party. Wounds close.")
}

// KillRandom drops a random living member to zero. Debug tool for
// exercising the death trigger.
func (s *simulation) KillRandom() {
	alive := s.aliveIndexes()
	if len(alive) == 0 {
		return
	}
	i := alive[s.rng.Intn(len(alive))]
	s.applyDamage(i, s.party[i].HP)
}

func (s *simulation) aliveIndexes() []int {
	var idx []int
	for i, m := range s.party {
		if m.Alive() {
			idx = append(idx, i)
		}
	}
	return idx
}

func (s *simulation) isDark(x, y int) bool {
	for _, e := range s.dungeon[s.floor] {
		if e.Type == state.DungeonEventDarkness && e.X == x && e.Y == y {
			return true
		}
	}
	return false
}

func (s *simulation) rollDarkTiles() []state.DungeonEvent {
	events := make([]state.DungeonEvent, 0, darkTilesPerFloor)
	for i := 0; i < darkTilesPerFloor; i++ {
		events = append(events, state.DungeonEvent{
			Type: state.DungeonEventDarkness,
			X:    s.rng.Intn(mapWidth),
			Y:    s.rng.Intn(mapHeight),
		})
	}
	return events
}

// rollTile resolves the random content of a freshly entered tile.
func (s *simulation) rollTile() {
	switch roll := s.rng.Intn(20) + 1; {
	case roll >= 18:
		s.skirmish()
	case roll == 17:
		item := []string{"a tarnished locket", "a cracked gemstone", "an old campaign medal"}[s.rng.Intn(3)]
		s.tracker.RecordTreasureFound(item)
		s.log.Add(fmt.Sprintf("Tucked into a crevice: %s.", item))
	}
}

// skirmish runs a compressed fight: the foe lands one attack roll
// against a random member, then the party finishes it off.
func (s *simulation) skirmish() {
	alive := s.aliveIndexes()
	if len(alive) == 0 {
		return
	}
	foe := []string{"a bone shambler", "a cave wight", "a rust spider"}[s.rng.Intn(3)]
	s.log.Add(fmt.Sprintf("%s lurches out of the gloom!", foe))

	i := alive[s.rng.Intn(len(alive))]
	target := s.party[i]
	sheet := s.sheets[target.Name]

	attack := s.rng.Intn(20) + 1 + 3
	if attack >= sheet.AC() {
		damage := s.rng.Intn(8) + 2
		s.applyDamage(i, damage)
	} else {
		s.log.Add(fmt.Sprintf("%s twists away from the blow.", target.Name))
	}

	s.tracker.RecordCombatVictory(foe)
	s.log.Add(fmt.Sprintf("The party puts %s down.", foe))
}

func (s *simulation) applyDamage(i, damage int) {
	m := &s.party[i]
	hp := m.HP - damage
	if hp < 0 {
		hp = 0
	}
	if sheet, ok := s.sheets[m.Name]; ok {
		_ = sheet.SetHP(hp)
	}
	m.HP = hp

	if hp == 0 {
		s.tracker.RecordCharacterDeath(m.Name)
		s.log.Add(fmt.Sprintf("%s collapses and does not rise.", m.Name))
		return
	}
	s.log.Add(fmt.Sprintf("%s takes %d damage.", m.Name, damage))
}
