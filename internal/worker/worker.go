// Package worker runs the banter orchestration loop: it watches game
// state for triggers, generates dialogue through the LLM endpoint, and
// presents accepted exchanges to the in-game message log. At most one
// generation is in flight at a time; pending triggers drain FIFO
// behind it, and the bounded queue drops overflow.
package worker

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/banter-engine/internal/logger"
	"github.com/jwebster45206/banter-engine/internal/metrics"
	"github.com/jwebster45206/banter-engine/internal/services"
	"github.com/jwebster45206/banter-engine/pkg/banter"
	"github.com/jwebster45206/banter-engine/pkg/prompts"
	"github.com/jwebster45206/banter-engine/pkg/state"
	"github.com/jwebster45206/banter-engine/pkg/trigger"
)

// maxAttempts bounds generation retries per trigger. The context is
// rebuilt for each attempt so the speaker may be re-sampled.
const maxAttempts = 2

// forcedPriority outranks every configured trigger priority so a
// forced trigger is never beaten in arbitration.
const forcedPriority = 100

// queueDepth bounds the trigger queue. The detector supplies at most
// one trigger per tick and the cooldown throttles it far below this,
// so only a pathological ForceTrigger burst can fill the queue.
const queueDepth = 8

// Journal records completed exchanges for later inspection. Optional;
// a nil journal disables recording.
type Journal interface {
	Record(ctx context.Context, sessionID string, entry services.JournalEntry) error
}

// Config holds the orchestrator's own settings.
type Config struct {
	// SessionID scopes journal entries. A fresh UUID per game session.
	SessionID string

	// Enabled gates the whole pipeline. When false, Update is a no-op.
	Enabled bool

	// Weights drive exchange-type selection during prompt building.
	Weights prompts.Weights
}

// Deps collects the orchestrator's collaborators.
type Deps struct {
	Detector  *trigger.Detector
	Builder   *banter.ContextBuilder
	Validator *banter.Validator
	LLM       services.LLMService
	Presenter banter.Presenter
	Recorder  *metrics.Recorder
	Journal   Journal
	RNG       *rand.Rand
	Logger    *slog.Logger
}

// Orchestrator owns the trigger queue and the single consumer
// goroutine that services it.
type Orchestrator struct {
	cfg       Config
	detector  *trigger.Detector
	builder   *banter.ContextBuilder
	validator *banter.Validator
	gen       *generator
	presenter banter.Presenter
	recorder  *metrics.Recorder
	journal   Journal
	log       *slog.Logger

	queue      chan trigger.Trigger
	generating atomic.Bool

	mu   sync.Mutex
	view *state.View

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewOrchestrator wires the pipeline together. Start must be called
// before triggers are serviced.
func NewOrchestrator(cfg Config, deps Deps) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		detector:  deps.Detector,
		builder:   deps.Builder,
		validator: deps.Validator,
		gen: &generator{
			llm:     deps.LLM,
			weights: cfg.Weights,
			rng:     deps.RNG,
		},
		presenter: deps.Presenter,
		recorder:  deps.Recorder,
		journal:   deps.Journal,
		log:       deps.Logger,
		queue:     make(chan trigger.Trigger, queueDepth),
		done:      make(chan struct{}),
	}
}

// Start launches the consumer goroutine.
func (o *Orchestrator) Start(ctx context.Context) {
	o.wg.Add(1)
	go o.loop(ctx)
	o.log.Info("banter orchestrator started", "enabled", o.cfg.Enabled)
}

// Stop shuts the consumer down and waits for any in-flight generation
// to finish.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() { close(o.done) })
	o.wg.Wait()
	o.log.Info("banter orchestrator stopped")
}

// Update feeds the latest game state into the pipeline. It runs trigger
// detection and enqueues the winning trigger, if any. Cheap enough to
// call every game tick.
func (o *Orchestrator) Update(view *state.View) {
	if !o.cfg.Enabled {
		return
	}

	o.mu.Lock()
	o.view = view
	o.mu.Unlock()

	trig := o.detector.Check(view)
	if trig == nil {
		return
	}
	o.enqueue(*trig)
}

// ForceTrigger queues an immediate ambient trigger, bypassing cooldown
// and detection. Debug tool for exercising the pipeline on demand.
func (o *Orchestrator) ForceTrigger() {
	if !o.cfg.Enabled {
		return
	}
	o.enqueue(trigger.Trigger{
		Type:     trigger.AmbientTime,
		Priority: forcedPriority,
		Details:  "forced",
		FiredAt:  time.Now().UTC(),
	})
}

// IsGenerating reports whether a generation is currently in flight.
func (o *Orchestrator) IsGenerating() bool {
	return o.generating.Load()
}

// QueueDepth reports how many triggers are waiting.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// enqueue hands the trigger to the consumer without blocking. Pending
// triggers wait their turn in arrival order; a full queue drops.
func (o *Orchestrator) enqueue(trig trigger.Trigger) {
	select {
	case o.queue <- trig:
		o.detector.MarkFired()
	default:
		o.recorder.RecordDropped(context.Background(), trig.Type)
		o.log.Warn("trigger dropped, queue full",
			"trigger", trig.Type, "priority", trig.Priority)
	}
}

func (o *Orchestrator) currentView() *state.View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

func (o *Orchestrator) loop(ctx context.Context) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-o.done:
			return
		case trig := <-o.queue:
			o.generating.Store(true)
			o.process(ctx, trig)
			o.generating.Store(false)
		}
	}
}

// process runs the full generate-validate-present cycle for one
// trigger. The context snapshot is rebuilt on every attempt so a retry
// may pick a different speaker.
func (o *Orchestrator) process(ctx context.Context, trig trigger.Trigger) {
	requestID := uuid.New().String()
	log := o.log.With("request_id", requestID, "trigger", trig.Type)
	start := time.Now()

	view := o.currentView()
	if view == nil {
		log.Warn("no game state available, dropping trigger")
		return
	}

	// Validation rejections and generation errors land on separate
	// counters; the last failed attempt decides which.
	var validationRejected bool
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		bctx, err := o.builder.Build(trig, view)
		if err != nil {
			validationRejected = false
			logger.WithError(log, err).Warn("failed to build context", "attempt", attempt)
			continue
		}

		resp, err := o.gen.generate(ctx, bctx, log)
		if err != nil {
			validationRejected = false
			logger.WithError(log, err).Warn("generation attempt failed", "attempt", attempt)
			continue
		}

		if verrs := o.validator.Validate(resp, bctx); len(verrs) > 0 {
			validationRejected = true
			log.Warn("response failed validation", "attempt", attempt, "errors", verrs)
			continue
		}

		o.accept(ctx, trig, resp, view, requestID, log, time.Since(start))
		return
	}

	if validationRejected {
		o.recorder.RecordValidationFailure(ctx, trig.Type)
	} else {
		o.recorder.RecordAPIFailure(ctx, trig.Type)
	}
	log.Warn("all generation attempts exhausted", "attempts", maxAttempts)
	if view.MessageLog != nil {
		o.presenter.DisplayErrorMessage(view.MessageLog)
	}
}

func (o *Orchestrator) accept(ctx context.Context, trig trigger.Trigger, resp *banter.Response, view *state.View, requestID string, log *slog.Logger, latency time.Duration) {
	o.recorder.RecordSuccess(ctx, trig.Type, latency)

	if o.journal != nil {
		entry := services.JournalEntry{
			RequestID:   requestID,
			TriggerType: trig.Type,
			Lines:       resp.Lines,
			CreatedAt:   time.Now().UTC(),
		}
		if err := o.journal.Record(ctx, o.cfg.SessionID, entry); err != nil {
			logger.WithError(log, err).Warn("failed to record journal entry")
		}
	}

	// Presentation needs somewhere to write and someone to speak.
	// Neither being absent is a failure; the exchange just evaporates.
	if view.MessageLog == nil || len(view.Party) == 0 {
		log.Warn("no message log or party attached, discarding banter")
		return
	}
	o.presenter.Display(resp, view.MessageLog, view.Party)
	log.Info("banter displayed",
		"exchange_type", resp.ExchangeType,
		"lines", len(resp.Lines),
		"latency", latency.String())
}
