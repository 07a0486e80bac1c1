package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jwebster45206/banter-engine/internal/services"
	"github.com/jwebster45206/banter-engine/pkg/banter"
	"github.com/jwebster45206/banter-engine/pkg/prompts"
)

// generator runs one prompt-build, endpoint call, and parse cycle.
type generator struct {
	llm     services.LLMService
	weights prompts.Weights
	rng     *rand.Rand
}

// generate produces a parsed response for the given context snapshot.
// The returned response has not yet been validated.
func (g *generator) generate(ctx context.Context, bctx *banter.Context, log *slog.Logger) (*banter.Response, error) {
	prompt, err := prompts.Build(bctx, g.weights, g.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	log.Debug("prompt built",
		"exchange_type", prompt.Metadata.ExchangeType,
		"estimated_tokens", prompt.Metadata.EstimatedTokens)

	raw, err := g.llm.Generate(ctx, []services.ChatMessage{
		{Role: services.ChatRoleSystem, Content: prompt.System},
		{Role: services.ChatRoleUser, Content: prompt.User},
	})
	if err != nil {
		return nil, fmt.Errorf("endpoint call failed: %w", err)
	}

	resp, err := banter.ParseResponse(raw, bctx.Speaker.Name, time.Now().UTC(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return resp, nil
}
