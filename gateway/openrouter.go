/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/yw4343/llm-role-framing-and-decision-bias/gateway/retry"
	"github.com/yw4343/llm-role-framing-and-decision-bias/metrics"
)

// DefaultBaseURL is the OpenRouter chat-completions endpoint. OpenRouter
// multiplexes models from every family behind the OpenAI wire protocol,
// which is what lets one Client implementation serve the whole experiment.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter implements Client against the OpenRouter API.
type OpenRouter struct {
	client         openai.Client
	requestTimeout time.Duration
	retryConfig    retry.Config
	metrics        *metrics.Experiment
}

// NewOpenRouter creates a gateway authenticated with the supplied API key.
// The key is held only by the underlying HTTP client; it is never logged
// and never written into any experiment record.
func NewOpenRouter(apiKey string, opts ...Option) (*OpenRouter, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	g := &OpenRouter{
		requestTimeout: 120 * time.Second,
		retryConfig:    retry.DefaultConfig(),
		metrics:        metrics.NewExperiment("roleframing.gateway"),
	}

	cfg := &clientConfig{
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		if err := opt(g, cfg); err != nil {
			return nil, err
		}
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(cfg.baseURL),
		// Retry policy lives in this package; the SDK must not stack
		// its own retries on top.
		option.WithMaxRetries(0),
	}
	if cfg.referer != "" {
		requestOpts = append(requestOpts, option.WithHeader("HTTP-Referer", cfg.referer))
	}
	g.client = openai.NewClient(requestOpts...)

	return g, nil
}

// Complete implements Client.
func (g *OpenRouter) Complete(ctx context.Context, req Request) (Completion, error) {
	log := clog.FromContext(ctx)

	if req.Model == "" {
		return Completion{}, errors.New("model id is required")
	}
	if req.Prompt == "" {
		return Completion{}, errors.New("prompt is required")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}

	log.With("model", req.Model).
		With("prompt_length", len(req.Prompt)).
		Info("Starting chat completion")

	start := time.Now()
	attempts := 0
	resp, err := retry.Do(ctx, g.retryConfig, "chat_completion", isRetryable, func() (*openai.ChatCompletion, error) {
		attempts++
		callCtx, cancel := context.WithTimeout(ctx, g.requestTimeout)
		defer cancel()
		return g.client.Chat.Completions.New(callCtx, params)
	})
	latency := time.Since(start)

	if err != nil {
		return Completion{}, &Error{
			Kind:     classify(err),
			Model:    req.Model,
			Attempts: attempts,
			Err:      err,
		}
	}

	text := ""
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	if strings.TrimSpace(text) == "" {
		return Completion{}, &Error{
			Kind:     EmptyResponse,
			Model:    req.Model,
			Attempts: attempts,
			Err:      errors.New("no content in model response"),
		}
	}

	g.metrics.RecordTokens(ctx, req.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	g.metrics.RecordRetries(ctx, req.Model, int64(attempts-1))

	log.With("model", req.Model).
		With("latency", latency).
		With("attempts", attempts).
		Info("Chat completion succeeded")

	return Completion{
		Text:             text,
		Latency:          latency,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
