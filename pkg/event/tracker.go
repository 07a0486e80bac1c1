package event

import (
	"sync"
	"time"
)

const (
	defaultMaxSize = 10
	defaultMaxAge  = 5 * time.Minute
)

// Tracker holds the most recent game events. It enforces both a
// maximum entry count and a maximum age; entries that exceed either
// limit are evicted on every read and write.
//
// All methods are safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	events  []Event
	maxSize int
	maxAge  time.Duration
	now     func() time.Time
}

// Option configures a Tracker during construction.
type Option func(*Tracker)

// WithMaxSize overrides the default buffer bound of 10 entries.
func WithMaxSize(n int) Option {
	return func(t *Tracker) { t.maxSize = n }
}

// WithMaxAge overrides the default 5-minute retention window.
func WithMaxAge(d time.Duration) Option {
	return func(t *Tracker) { t.maxAge = d }
}

// WithClock substitutes the time source. Tests use this to control
// aging without sleeping.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates an empty tracker with the default bounds.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		maxSize: defaultMaxSize,
		maxAge:  defaultMaxAge,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record appends an event, stamping Acknowledged false. Stale entries
// are evicted first; if the buffer then exceeds its bound, the oldest
// entries are trimmed from the front.
func (t *Tracker) Record(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e.Acknowledged = false
	t.prune()
	t.events = append(t.events, e)
	if len(t.events) > t.maxSize {
		t.events = t.events[len(t.events)-t.maxSize:]
	}
}

// RecordCharacterDeath records a death event for the named character,
// stamped with the current time.
func (t *Tracker) RecordCharacterDeath(name string) {
	t.Record(Event{
		Type:          CharacterDeath,
		Timestamp:     t.now(),
		CharacterName: name,
		Details:       deathDetails(name),
	})
}

// RecordDarkZoneEntry records the party entering a dark zone.
func (t *Tracker) RecordDarkZoneEntry(floor int) {
	t.Record(Event{
		Type:      DarkZoneEntry,
		Timestamp: t.now(),
		Details:   darkZoneDetails(floor),
	})
}

// RecordCombatVictory records a won battle against the named foe.
func (t *Tracker) RecordCombatVictory(foe string) {
	t.Record(Event{
		Type:      CombatVictory,
		Timestamp: t.now(),
		Details:   victoryDetails(foe),
	})
}

// RecordTreasureFound records a treasure discovery.
func (t *Tracker) RecordTreasureFound(item string) {
	t.Record(Event{
		Type:      TreasureFound,
		Timestamp: t.now(),
		Details:   treasureDetails(item),
	})
}

// RecentEvents returns a copy of the buffer after pruning stale
// entries. A positive maxAge further restricts the result to events at
// or after now-maxAge; zero returns everything retained.
func (t *Tracker) RecentEvents(maxAge time.Duration) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prune()
	if maxAge <= 0 {
		return append([]Event(nil), t.events...)
	}

	cutoff := t.now().Add(-maxAge)
	out := make([]Event, 0, len(t.events))
	for _, e := range t.events {
		if !e.Timestamp.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// Unacknowledged returns retained events that have not been
// acknowledged, optionally filtered by type (empty matches all).
func (t *Tracker) Unacknowledged(typ Type) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prune()
	out := make([]Event, 0, len(t.events))
	for _, e := range t.events {
		if e.Acknowledged {
			continue
		}
		if typ != "" && e.Type != typ {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Acknowledge flips the acknowledged flag on the first stored event
// matching the given event's type, timestamp, and character name.
// This is an equality match, not an identity match: two distinct
// events with the same type, millisecond timestamp, and character
// collide. Returns false when no match is found.
func (t *Tracker) Acknowledge(e Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.events {
		s := &t.events[i]
		if s.Type == e.Type && s.Timestamp.Equal(e.Timestamp) && s.CharacterName == e.CharacterName {
			s.Acknowledged = true
			return true
		}
	}
	return false
}

// Clear empties the buffer.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = t.events[:0]
}

// prune drops entries older than maxAge. Callers must hold mu.
func (t *Tracker) prune() {
	cutoff := t.now().Add(-t.maxAge)
	kept := t.events[:0]
	for _, e := range t.events {
		if !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	t.events = kept
}
