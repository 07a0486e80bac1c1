// Command console runs an interactive dungeon-crawl simulator wired to
// the full banter pipeline. Move the party around, hurt it, kill it,
// and watch the characters talk about it.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/jwebster45206/banter-engine/internal/config"
	"github.com/jwebster45206/banter-engine/internal/logger"
	"github.com/jwebster45206/banter-engine/internal/metrics"
	"github.com/jwebster45206/banter-engine/internal/services"
	"github.com/jwebster45206/banter-engine/internal/worker"
	"github.com/jwebster45206/banter-engine/pkg/banter"
	"github.com/jwebster45206/banter-engine/pkg/event"
	"github.com/jwebster45206/banter-engine/pkg/trigger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	log := logger.Setup(cfg)

	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		return fmt.Errorf("failed to load tuning: %w", err)
	}

	shutdownMetrics, err := metrics.InitProvider("banter-console", "dev")
	if err != nil {
		return fmt.Errorf("failed to init metrics provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			log.Warn("metrics shutdown failed", "error", err)
		}
	}()

	recorder, err := metrics.NewRecorder(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create metrics recorder: %w", err)
	}

	tracker := event.NewTracker()
	msgLog := &messageLog{}

	// The simulation rolls on the UI goroutine while the pipeline
	// samples on the worker goroutine, so they get separate sources.
	simRng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + 1))

	sim, err := newSimulation(tracker, simRng, msgLog)
	if err != nil {
		return fmt.Errorf("failed to set up simulation: %w", err)
	}

	deps := worker.Deps{
		Detector:  trigger.NewDetector(tuning.TriggerConfig(), tracker, log),
		Builder:   banter.NewContextBuilder(tracker, rng, log),
		Validator: banter.NewValidator(log),
		LLM:       selectLLM(cfg, rng),
		Presenter: banter.NewMessagePresenter(),
		Recorder:  recorder,
		RNG:       rng,
		Logger:    log,
	}

	if cfg.RedisURL != "" {
		journal, err := services.NewBanterJournal(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect journal: %w", err)
		}
		defer func() { _ = journal.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := journal.Ping(pingCtx); err != nil {
			log.Warn("banter journal unreachable, continuing without it", "error", err)
		} else {
			deps.Journal = journal
		}
		cancel()
	}

	orch := worker.NewOrchestrator(worker.Config{
		SessionID: uuid.New().String(),
		Enabled:   cfg.BanterEnabled,
		Weights:   tuning.Weights(),
	}, deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch.Start(ctx)
	defer orch.Stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

		g.Go(func() error {
			log.Info("metrics server listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(newCrawlUI(sim, orch, msgLog),
			tea.WithAltScreen(),
			tea.WithMouseCellMotion())
		_, err := p.Run()
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	recorder.LogSummary(log)
	return nil
}

// cannedLines are offline banter used when BANTER_ENDPOINT_URL=mock.
// They carry no speaker prefix, so the parser attributes them to
// whichever character was selected to speak.
var cannedLines = []string{
	"Another day, another tomb.",
	"Quiet down here. Too quiet.",
	"My feet ache. My pride aches worse.",
	"If we find daylight again, the first round is mine.",
	"Something moved. Probably nothing. Probably.",
}

// selectLLM returns the real endpoint client, or a canned mock when
// the endpoint URL is the literal string "mock". The mock lets the
// simulator run without a model server.
func selectLLM(cfg *config.Config, rng *rand.Rand) services.LLMService {
	if cfg.EndpointURL == "mock" {
		return &services.MockLLMService{
			GenerateFunc: func(ctx context.Context, messages []services.ChatMessage) (string, error) {
				return cannedLines[rng.Intn(len(cannedLines))], nil
			},
		}
	}
	return services.NewEndpointService(services.EndpointConfig{
		URL:               cfg.EndpointURL,
		Model:             cfg.Model,
		Timeout:           cfg.RequestTimeout,
		Temperature:       cfg.Temperature,
		MaxTokens:         cfg.MaxTokens,
		RepetitionPenalty: cfg.RepetitionPenalty,
		MinP:              cfg.MinP,
	})
}
