package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sentinel errors for the distinct generation failure modes. The
// orchestrator treats them all as transient; they exist so logs and
// tests can tell the modes apart.
var (
	ErrEndpointUnavailable = errors.New("generation endpoint unavailable")
	ErrMalformedResponse   = errors.New("malformed generation response")
)

// EndpointConfig holds the request parameters for the generation
// endpoint. Values come from the application configuration.
type EndpointConfig struct {
	URL               string
	Model             string
	Timeout           time.Duration
	Temperature       float64
	MaxTokens         int
	RepetitionPenalty float64
	MinP              float64
}

// EndpointService implements LLMService against an OpenAI-compatible
// HTTP endpoint. It accepts both completions-style responses
// (choices[0].text) and chat-style responses
// (choices[0].message.content), trying the former first.
type EndpointService struct {
	cfg        EndpointConfig
	httpClient *http.Client
}

type generationRequest struct {
	Model             string        `json:"model,omitempty"`
	Messages          []ChatMessage `json:"messages"`
	Temperature       float64       `json:"temperature"`
	MaxTokens         int           `json:"max_tokens"`
	RepetitionPenalty float64       `json:"repetition_penalty"`
	MinP              float64       `json:"min_p"`
}

type generationChoice struct {
	Text    string `json:"text"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type generationResponse struct {
	Choices []generationChoice `json:"choices"`
}

// NewEndpointService creates a service for the configured endpoint.
func NewEndpointService(cfg EndpointConfig) *EndpointService {
	return &EndpointService{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name identifies the service in logs and metrics.
func (s *EndpointService) Name() string {
	return "endpoint"
}

// Generate posts the messages to the endpoint and returns the raw
// completion text. The request is aborted when the configured timeout
// elapses.
func (s *EndpointService) Generate(ctx context.Context, messages []ChatMessage) (string, error) {
	genReq := generationRequest{
		Model:             s.cfg.Model,
		Messages:          messages,
		Temperature:       s.cfg.Temperature,
		MaxTokens:         s.cfg.MaxTokens,
		RepetitionPenalty: s.cfg.RepetitionPenalty,
		MinP:              s.cfg.MinP,
	}

	reqBody, err := json.Marshal(genReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.cfg.URL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("generation request timed out after %s", s.cfg.Timeout)
		}
		return "", fmt.Errorf("%w: %v", ErrEndpointUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("generation request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var genResp generationResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(genResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}

	// Completions shape first, then chat shape.
	if text := genResp.Choices[0].Text; text != "" {
		return text, nil
	}
	if content := genResp.Choices[0].Message.Content; content != "" {
		return content, nil
	}
	return "", fmt.Errorf("%w: neither text nor message content present", ErrMalformedResponse)
}
