package trigger

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jwebster45206/banter-engine/pkg/event"
	"github.com/jwebster45206/banter-engine/pkg/state"
)

// eventLookback is how far back the detector searches the event
// tracker for death and dark-zone events.
const eventLookback = 60 * time.Second

// Detector inspects live game state plus the event tracker once per
// game tick and emits at most one trigger. It owns the global cooldown
// clock, the ambient-time clock, and the party step counter.
//
// Check and MarkFired are expected to be called from the game loop
// only; the detector is not safe for concurrent use.
type Detector struct {
	cfg     Config
	tracker *event.Tracker
	log     *slog.Logger
	now     func() time.Time

	lastFired   time.Time
	lastAmbient time.Time

	stepCount int
	lastX     int
	lastY     int
	hasPos    bool
}

// NewDetector creates a detector reading events from tracker. The
// ambient-time clock starts at construction so a fresh detector does
// not immediately fire.
func NewDetector(cfg Config, tracker *event.Tracker, log *slog.Logger) *Detector {
	d := &Detector{
		cfg:     cfg,
		tracker: tracker,
		log:     log,
		now:     time.Now,
	}
	d.lastAmbient = d.now()
	return d
}

// SetClock substitutes the time source for tests.
func (d *Detector) SetClock(now func() time.Time) {
	d.now = now
	d.lastAmbient = now()
}

// StepCount returns the accumulated party steps since the last fired
// trigger.
func (d *Detector) StepCount() int {
	return d.stepCount
}

// Check inspects the view and returns the highest-priority candidate
// trigger, or nil when nothing fires. The step counter advances on
// every call, including calls suppressed by the cooldown, so distance
// progress is never lost to throttling.
func (d *Detector) Check(view *state.View) *Trigger {
	now := d.now()

	d.countStep(view)

	if !d.lastFired.IsZero() && now.Sub(d.lastFired) < d.cfg.Cooldown {
		return nil
	}

	// Candidate insertion order breaks priority ties: death, low HP,
	// dark zone, ambient time, ambient distance.
	var candidates []Trigger

	if t := d.checkCharacterDeath(now); t != nil {
		candidates = append(candidates, *t)
	}
	if t := d.checkLowHP(view, now); t != nil {
		candidates = append(candidates, *t)
	}
	if t := d.checkDarkZone(view, now); t != nil {
		candidates = append(candidates, *t)
	}
	if t := d.checkAmbientTime(now); t != nil {
		candidates = append(candidates, *t)
	}
	if t := d.checkAmbientDistance(now); t != nil {
		candidates = append(candidates, *t)
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})

	winner := candidates[0]
	d.log.Debug("trigger candidate selected",
		"type", winner.Type,
		"priority", winner.Priority,
		"candidates", len(candidates))
	return &winner
}

// MarkFired resets the cooldown clock, the ambient-time clock, and the
// step counter together, regardless of which trigger type fired. This
// keeps different trigger reasons from firing banter on consecutive
// ticks.
func (d *Detector) MarkFired() {
	now := d.now()
	d.lastFired = now
	d.lastAmbient = now
	d.stepCount = 0
}

func (d *Detector) countStep(view *state.View) {
	if d.hasPos && (view.PartyX != d.lastX || view.PartyY != d.lastY) {
		d.stepCount++
	}
	d.lastX = view.PartyX
	d.lastY = view.PartyY
	d.hasPos = true
}

func (d *Detector) checkCharacterDeath(now time.Time) *Trigger {
	deaths := d.recentOfType(event.CharacterDeath)
	if len(deaths) == 0 {
		return nil
	}
	latest := deaths[len(deaths)-1]
	return &Trigger{
		Type:          CharacterDeath,
		Priority:      d.cfg.Priorities[CharacterDeath],
		Details:       latest.Details,
		CharacterName: latest.CharacterName,
		FiredAt:       now,
	}
}

func (d *Detector) checkLowHP(view *state.View, now time.Time) *Trigger {
	for _, m := range view.Party {
		if !m.Alive() {
			continue
		}
		if pct := m.HPPercent(); pct > 0 && pct <= 0.3 {
			return &Trigger{
				Type:          LowHPWarning,
				Priority:      d.cfg.Priorities[LowHPWarning],
				Details:       fmt.Sprintf("%s is badly wounded", m.Name),
				CharacterName: m.Name,
				FiredAt:       now,
			}
		}
	}
	return nil
}

// checkDarkZone requires both the tile-darkness check and a recent
// dark-zone-entry event. External code records the event; the tile
// check must independently agree.
func (d *Detector) checkDarkZone(view *state.View, now time.Time) *Trigger {
	if !view.IsDarkTile() {
		return nil
	}
	entries := d.recentOfType(event.DarkZoneEntry)
	if len(entries) == 0 {
		return nil
	}
	return &Trigger{
		Type:     DarkZoneEntry,
		Priority: d.cfg.Priorities[DarkZoneEntry],
		Details:  entries[len(entries)-1].Details,
		FiredAt:  now,
	}
}

func (d *Detector) checkAmbientTime(now time.Time) *Trigger {
	if now.Sub(d.lastAmbient) < d.cfg.AmbientInterval {
		return nil
	}
	return &Trigger{
		Type:     AmbientTime,
		Priority: d.cfg.Priorities[AmbientTime],
		Details:  "the party has been quiet for a while",
		FiredAt:  now,
	}
}

func (d *Detector) checkAmbientDistance(now time.Time) *Trigger {
	if d.cfg.StepThreshold <= 0 || d.stepCount < d.cfg.StepThreshold {
		return nil
	}
	return &Trigger{
		Type:     AmbientDistance,
		Priority: d.cfg.Priorities[AmbientDistance],
		Details:  fmt.Sprintf("the party has marched %d steps", d.stepCount),
		FiredAt:  now,
	}
}

func (d *Detector) recentOfType(typ event.Type) []event.Event {
	all := d.tracker.RecentEvents(eventLookback)
	out := all[:0]
	for _, e := range all {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
