package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/jwebster45206/banter-engine/internal/metrics"
	"github.com/jwebster45206/banter-engine/internal/services"
	"github.com/jwebster45206/banter-engine/pkg/actor"
	"github.com/jwebster45206/banter-engine/pkg/banter"
	"github.com/jwebster45206/banter-engine/pkg/event"
	"github.com/jwebster45206/banter-engine/pkg/prompts"
	"github.com/jwebster45206/banter-engine/pkg/state"
	"github.com/jwebster45206/banter-engine/pkg/trigger"
)

// fakeMessageLog collects appended lines for assertions.
type fakeMessageLog struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeMessageLog) Add(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, text)
}

func (f *fakeMessageLog) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}

// fakeJournal records entries in memory.
type fakeJournal struct {
	mu      sync.Mutex
	entries []services.JournalEntry
}

func (f *fakeJournal) Record(ctx context.Context, sessionID string, entry services.JournalEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeJournal) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testParty() []actor.Character {
	return []actor.Character{
		{
			Name: "Gilda", Race: "dwarf", Class: "cleric", Level: 3,
			HP: 10, MaxHP: 10, MP: 5, MaxMP: 5,
			Traits: actor.Traits{
				Temperament: actor.TemperamentStoic,
				Social:      actor.SocialBlunt,
				Outlook:     actor.OutlookPragmatist,
				Speech:      actor.SpeechPlain,
			},
		},
	}
}

type testHarness struct {
	orch     *Orchestrator
	recorder *metrics.Recorder
	journal  *fakeJournal
	msgLog   *fakeMessageLog
	view     *state.View
	cancel   context.CancelFunc
}

func newHarness(t *testing.T, llm services.LLMService) *testHarness {
	t.Helper()

	log := discardLogger()
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	recorder, err := metrics.NewRecorder(mp)
	require.NoError(t, err)

	tracker := event.NewTracker()
	rng := rand.New(rand.NewSource(1))
	journal := &fakeJournal{}
	msgLog := &fakeMessageLog{}
	view := &state.View{
		Party:      testParty(),
		Floor:      1,
		MessageLog: msgLog,
	}

	orch := NewOrchestrator(
		Config{
			SessionID: "test-session",
			Enabled:   true,
			Weights:   prompts.DefaultWeights(),
		},
		Deps{
			Detector:  trigger.NewDetector(trigger.DefaultConfig(), tracker, log),
			Builder:   banter.NewContextBuilder(tracker, rng, log),
			Validator: banter.NewValidator(log),
			LLM:       llm,
			Presenter: banter.NewMessagePresenter(),
			Recorder:  recorder,
			Journal:   journal,
			RNG:       rng,
			Logger:    log,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	orch.Start(ctx)
	t.Cleanup(func() {
		orch.Stop()
		cancel()
	})

	return &testHarness{
		orch:     orch,
		recorder: recorder,
		journal:  journal,
		msgLog:   msgLog,
		view:     view,
		cancel:   cancel,
	}
}

func TestOrchestrator_SuccessfulGeneration(t *testing.T) {
	llm := &services.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []services.ChatMessage) (string, error) {
			return `Gilda: "These walls have heard worse."`, nil
		},
	}
	h := newHarness(t, llm)

	h.orch.Update(h.view)
	h.orch.ForceTrigger()

	require.Eventually(t, func() bool {
		return len(h.msgLog.Lines()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "Gilda: These walls have heard worse.", h.msgLog.Lines()[0])
	assert.Equal(t, 1, h.journal.Len())

	s := h.recorder.Snapshot()
	assert.Equal(t, int64(1), s.Successes[trigger.AmbientTime])
	assert.Zero(t, s.ValidationFailures)
	assert.Zero(t, s.APIFailures)
}

func TestOrchestrator_RetryThenSuccess(t *testing.T) {
	var calls atomic.Int32
	llm := &services.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []services.ChatMessage) (string, error) {
			if calls.Add(1) == 1 {
				// Unknown speaker fails name validation.
				return `Zorblax: "Who summoned me?"`, nil
			}
			return `Gilda: "Thought I heard something."`, nil
		},
	}
	h := newHarness(t, llm)

	h.orch.Update(h.view)
	h.orch.ForceTrigger()

	require.Eventually(t, func() bool {
		return len(h.msgLog.Lines()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "Gilda: Thought I heard something.", h.msgLog.Lines()[0])

	s := h.recorder.Snapshot()
	assert.Equal(t, int64(1), s.Successes[trigger.AmbientTime])
	assert.Zero(t, s.ValidationFailures)
}

func TestOrchestrator_ValidationExhaustion(t *testing.T) {
	var calls atomic.Int32
	llm := &services.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []services.ChatMessage) (string, error) {
			calls.Add(1)
			return `Zorblax: "Still me."`, nil
		},
	}
	h := newHarness(t, llm)

	h.orch.Update(h.view)
	h.orch.ForceTrigger()

	require.Eventually(t, func() bool {
		return len(h.msgLog.Lines()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The generic fallback is shown exactly once; no dialogue leaked.
	assert.Equal(t, []string{"The party falls silent for a moment."}, h.msgLog.Lines())
	assert.Equal(t, int32(maxAttempts), calls.Load())
	assert.Zero(t, h.journal.Len())

	s := h.recorder.Snapshot()
	assert.Empty(t, s.Successes)
	assert.Equal(t, int64(1), s.ValidationFailures)
	assert.Zero(t, s.APIFailures)
}

func TestOrchestrator_EndpointExhaustion(t *testing.T) {
	llm := &services.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []services.ChatMessage) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	h := newHarness(t, llm)

	h.orch.Update(h.view)
	h.orch.ForceTrigger()

	require.Eventually(t, func() bool {
		return len(h.msgLog.Lines()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"The party falls silent for a moment."}, h.msgLog.Lines())

	s := h.recorder.Snapshot()
	assert.Equal(t, int64(1), s.APIFailures)
	assert.Zero(t, s.ValidationFailures)
}

func TestOrchestrator_UnusableTextCountsAsAPIFailure(t *testing.T) {
	// Blank completions parse to zero usable lines. That is a
	// generation failure, not a validator rejection, and it must land
	// on the API-failure counter when attempts run out.
	llm := &services.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []services.ChatMessage) (string, error) {
			return "   \n\n", nil
		},
	}
	h := newHarness(t, llm)

	h.orch.Update(h.view)
	h.orch.ForceTrigger()

	require.Eventually(t, func() bool {
		return len(h.msgLog.Lines()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"The party falls silent for a moment."}, h.msgLog.Lines())

	s := h.recorder.Snapshot()
	assert.Equal(t, int64(1), s.APIFailures)
	assert.Zero(t, s.ValidationFailures)
}

func TestOrchestrator_PresentationRequiresParty(t *testing.T) {
	llm := &services.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []services.ChatMessage) (string, error) {
			t.Error("generation should not run in this test")
			return "", nil
		},
	}
	h := newHarness(t, llm)

	resp := &banter.Response{
		ExchangeType: banter.ExchangeSolo,
		Participants: []string{"Gilda"},
		Lines:        []banter.Line{{CharacterName: "Gilda", Text: "Anyone there?"}},
		GeneratedAt:  time.Now().UTC(),
	}
	trig := trigger.Trigger{Type: trigger.AmbientTime, FiredAt: time.Now().UTC()}
	view := &state.View{Party: nil, MessageLog: h.msgLog}

	h.orch.accept(context.Background(), trig, resp, view, "req-1", discardLogger(), time.Millisecond)

	// The exchange is counted and journaled but never displayed
	// without a party to attribute it to.
	assert.Empty(t, h.msgLog.Lines())
	assert.Equal(t, 1, h.journal.Len())
	assert.Equal(t, int64(1), h.recorder.Snapshot().Successes[trigger.AmbientTime])
}

func TestOrchestrator_SingleFlightWithQueuedTriggers(t *testing.T) {
	release := make(chan struct{})
	llm := &services.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []services.ChatMessage) (string, error) {
			release <- struct{}{}
			return `Gilda: "Done waiting."`, nil
		},
	}
	h := newHarness(t, llm)

	h.orch.Update(h.view)
	h.orch.ForceTrigger()

	require.Eventually(t, func() bool {
		return h.orch.IsGenerating()
	}, 2*time.Second, 5*time.Millisecond)

	// Triggers arriving mid-generation wait their turn in order.
	h.orch.ForceTrigger()
	h.orch.ForceTrigger()
	assert.Equal(t, 2, h.orch.QueueDepth())

	// Let the generations finish; the queued triggers drain
	// back-to-back after the first completes.
	<-release
	<-release
	<-release
	require.Eventually(t, func() bool {
		return len(h.msgLog.Lines()) == 3
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(3), h.recorder.Snapshot().Successes[trigger.AmbientTime])
	assert.Zero(t, h.recorder.Snapshot().Dropped)
}

func TestOrchestrator_DropsWhenQueueFull(t *testing.T) {
	release := make(chan struct{})
	llm := &services.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []services.ChatMessage) (string, error) {
			release <- struct{}{}
			return `Gilda: "Still here."`, nil
		},
	}
	h := newHarness(t, llm)

	h.orch.Update(h.view)
	h.orch.ForceTrigger()

	require.Eventually(t, func() bool {
		return h.orch.IsGenerating()
	}, 2*time.Second, 5*time.Millisecond)

	for i := 0; i < queueDepth; i++ {
		h.orch.ForceTrigger()
	}
	assert.Equal(t, queueDepth, h.orch.QueueDepth())

	// One past capacity drops instead of blocking the caller.
	h.orch.ForceTrigger()
	assert.Equal(t, int64(1), h.recorder.Snapshot().Dropped)

	for i := 0; i < queueDepth+1; i++ {
		<-release
	}
	require.Eventually(t, func() bool {
		return len(h.msgLog.Lines()) == queueDepth+1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOrchestrator_DisabledIsNoOp(t *testing.T) {
	llm := &services.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []services.ChatMessage) (string, error) {
			t.Error("generation should never run when disabled")
			return "", nil
		},
	}

	log := discardLogger()
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	recorder, err := metrics.NewRecorder(mp)
	require.NoError(t, err)

	tracker := event.NewTracker()
	rng := rand.New(rand.NewSource(1))
	orch := NewOrchestrator(
		Config{SessionID: "s", Enabled: false, Weights: prompts.DefaultWeights()},
		Deps{
			Detector:  trigger.NewDetector(trigger.DefaultConfig(), tracker, log),
			Builder:   banter.NewContextBuilder(tracker, rng, log),
			Validator: banter.NewValidator(log),
			LLM:       llm,
			Presenter: banter.NewMessagePresenter(),
			Recorder:  recorder,
			RNG:       rng,
			Logger:    log,
		},
	)
	orch.Start(context.Background())
	defer orch.Stop()

	view := &state.View{Party: testParty(), MessageLog: &fakeMessageLog{}}
	orch.Update(view)
	orch.ForceTrigger()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, orch.QueueDepth())
	assert.False(t, orch.IsGenerating())
}

func TestOrchestrator_DeathTriggerFromDetector(t *testing.T) {
	llm := &services.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []services.ChatMessage) (string, error) {
			return `Gilda: "Rest easy, Bramble."`, nil
		},
	}

	log := discardLogger()
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	recorder, err := metrics.NewRecorder(mp)
	require.NoError(t, err)

	tracker := event.NewTracker()
	tracker.RecordCharacterDeath("Bramble")
	rng := rand.New(rand.NewSource(1))
	msgLog := &fakeMessageLog{}

	orch := NewOrchestrator(
		Config{SessionID: "s", Enabled: true, Weights: prompts.DefaultWeights()},
		Deps{
			Detector:  trigger.NewDetector(trigger.DefaultConfig(), tracker, log),
			Builder:   banter.NewContextBuilder(tracker, rng, log),
			Validator: banter.NewValidator(log),
			LLM:       llm,
			Presenter: banter.NewMessagePresenter(),
			Recorder:  recorder,
			RNG:       rng,
			Logger:    log,
		},
	)
	orch.Start(context.Background())
	defer orch.Stop()

	view := &state.View{Party: testParty(), Floor: 1, MessageLog: msgLog}
	orch.Update(view)

	require.Eventually(t, func() bool {
		return len(msgLog.Lines()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	s := recorder.Snapshot()
	assert.Equal(t, int64(1), s.Successes[trigger.CharacterDeath])
}
