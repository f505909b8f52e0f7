// Package analysis sends document text to an OpenAI-compatible chat model and
// parses its structured spelling and structure feedback.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/shuddho/internal/model"
)

const (
	// DefaultModel is served by Gemini's OpenAI-compatible endpoint.
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultTimeout = 60 * time.Second

	// DefaultAPIKeyEnv names the environment variable holding the API key.
	DefaultAPIKeyEnv = "GEMINI_API_KEY"
)

var (
	// ErrNoAPIKey is returned when no API key is configured.
	ErrNoAPIKey = errors.New("analysis: no API key configured")
	// ErrMalformedResponse is returned when the model output does not match
	// the expected JSON shape.
	ErrMalformedResponse = errors.New("analysis: malformed model response")
)

// Analyzer turns document text into an analysis response.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*model.AnalysisResponse, error)
	Model() string
}

// Config holds client settings. Zero values fall back to the defaults.
type Config struct {
	APIKey       string
	Model        string
	BaseURL      string
	Timeout      time.Duration
	MinInterval  time.Duration
	WritingStyle string
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Client is an Analyzer backed by the chat completions API.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	style   string
	logger  *slog.Logger
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}

	cfg.Logger.Debug("analysis client initialized", "model", cfg.Model, "base_url", clientCfg.BaseURL)
	return &Client{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: limiter,
		style:   strings.TrimSpace(cfg.WritingStyle),
		logger:  cfg.Logger,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Analyze sends text to the model. The call is bounded by the client timeout.
func (c *Client) Analyze(ctx context.Context, text string) (*model.AnalysisResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("analysis: waiting for rate limiter: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(c.style)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	started := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Warn("analysis request failed", "model", c.model, "error", err)
		return nil, fmt.Errorf("analysis: chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}
	c.logger.Debug("analysis response received",
		"model", c.model,
		"finish_reason", resp.Choices[0].FinishReason,
		"elapsed", time.Since(started))

	return ParseResponse(resp.Choices[0].Message.Content)
}
