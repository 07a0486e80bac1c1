package banter

import (
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"time"

	"github.com/jwebster45206/banter-engine/pkg/actor"
	"github.com/jwebster45206/banter-engine/pkg/event"
	"github.com/jwebster45206/banter-engine/pkg/state"
	"github.com/jwebster45206/banter-engine/pkg/trigger"
)

// recentEventsWindow is how far back rich contexts pull tracker
// events.
const recentEventsWindow = 2 * time.Minute

// deadNameRe extracts a character name from death details prose. Used
// only as a fallback when the trigger does not carry the name
// structurally.
var deadNameRe = regexp.MustCompile(`^(.+?) (?:has died|died)`)

// ContextBuilder assembles immutable context snapshots from live game
// state. Each tier builder layers on the one below it: rich adds
// recent events to standard, standard adds the party block to minimal.
type ContextBuilder struct {
	tracker *event.Tracker
	rng     *rand.Rand
	log     *slog.Logger
	now     func() time.Time
}

// NewContextBuilder creates a builder reading recent events from
// tracker. rng drives speaker selection; pass a seeded source in tests
// for determinism.
func NewContextBuilder(tracker *event.Tracker, rng *rand.Rand, log *slog.Logger) *ContextBuilder {
	return &ContextBuilder{
		tracker: tracker,
		rng:     rng,
		log:     log,
		now:     time.Now,
	}
}

// SetClock substitutes the time source for tests.
func (b *ContextBuilder) SetClock(now func() time.Time) {
	b.now = now
}

// Build assembles the snapshot for the trigger's tier from the current
// view. It fails when no party member is alive to speak.
func (b *ContextBuilder) Build(t trigger.Trigger, view *state.View) (*Context, error) {
	tier := TierFor(t.Type)

	ctx, err := b.buildMinimal(t, view)
	if err != nil {
		return nil, err
	}

	if tier == TierStandard || tier == TierRich {
		party := b.buildPartyInfo(view)
		ctx.Party = &party
	}
	if tier == TierRich {
		ctx.Recent = b.tracker.RecentEvents(recentEventsWindow)
	}

	ctx.Tier = tier
	b.log.Debug("context assembled",
		"tier", tier,
		"trigger", t.Type,
		"speaker", ctx.Speaker.Name,
		"est_tokens", tier.estimatedTokens())
	return ctx, nil
}

func (b *ContextBuilder) buildMinimal(t trigger.Trigger, view *state.View) (*Context, error) {
	speaker, err := b.SelectSpeaker(view.Party, t)
	if err != nil {
		return nil, err
	}
	return &Context{
		Tier:     TierMinimal,
		Trigger:  t,
		Speaker:  speaker,
		Location: b.buildLocationInfo(view),
	}, nil
}

// SelectSpeaker picks a uniform-random alive party member. For a
// character-death trigger the dead character is excluded from the
// pool whenever at least one other survivor exists.
func (b *ContextBuilder) SelectSpeaker(party []actor.Character, t trigger.Trigger) (actor.Character, error) {
	alive := make([]actor.Character, 0, len(party))
	for _, m := range party {
		if m.Alive() {
			alive = append(alive, m)
		}
	}
	if len(alive) == 0 {
		return actor.Character{}, fmt.Errorf("no living party members to speak")
	}

	if t.Type == trigger.CharacterDeath {
		if dead := deadCharacterName(t); dead != "" {
			survivors := make([]actor.Character, 0, len(alive))
			for _, m := range alive {
				if m.Name != dead {
					survivors = append(survivors, m)
				}
			}
			if len(survivors) > 0 {
				alive = survivors
			}
		}
	}

	return alive[b.rng.Intn(len(alive))], nil
}

// deadCharacterName resolves the subject of a death trigger: the
// structured field when set, else a prose parse of the details line.
func deadCharacterName(t trigger.Trigger) string {
	if t.CharacterName != "" {
		return t.CharacterName
	}
	if m := deadNameRe.FindStringSubmatch(t.Details); m != nil {
		return m[1]
	}
	return ""
}

// buildPartyInfo aggregates vitals over alive members. A party with
// nobody alive yields zeroed info rather than an error; speaker
// selection already guards the fatal case.
func (b *ContextBuilder) buildPartyInfo(view *state.View) PartyInfo {
	alive := view.AliveMembers()
	info := PartyInfo{
		Size:    len(view.Party),
		Members: view.Party,
	}
	if len(alive) == 0 {
		info.Members = nil
		info.Size = 0
		return info
	}

	var hpSum, mpSum float64
	for _, m := range alive {
		hpSum += m.HPPercent()
		mpSum += m.MPPercent()
		if len(m.StatusEffects) > 0 {
			info.AnyStatusEffect = true
		}
	}
	info.AliveCount = len(alive)
	info.AvgHPPercent = hpSum / float64(len(alive))
	info.AvgMPPercent = mpSum / float64(len(alive))
	return info
}

func (b *ContextBuilder) buildLocationInfo(view *state.View) LocationInfo {
	info := LocationInfo{
		Floor:  view.Floor,
		IsDark: view.IsDarkTile(),
	}
	if !view.DungeonEnteredAt.IsZero() {
		info.TimeInDungeon = b.now().Sub(view.DungeonEnteredAt)
	}
	return info
}
