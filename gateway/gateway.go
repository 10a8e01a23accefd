/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package gateway provides a uniform chat-completion interface over remote
// models. Every model in an experiment, response or judge, is reached
// through the same Client contract so the runner never deals with
// provider-specific request shapes or failure modes.
package gateway

import (
	"context"
	"time"
)

// Request describes one chat completion call.
type Request struct {
	// Model is the provider-qualified model id, e.g.
	// "openai/gpt-4.1-mini" or "meta-llama/llama-3.1-70b-instruct".
	Model string
	// System is an optional system prompt.
	System string
	// Prompt is the user message.
	Prompt string
	// Temperature is the sampling temperature.
	Temperature float64
	// MaxTokens bounds the completion length.
	MaxTokens int64
}

// Completion is the normalized result of a chat completion call.
type Completion struct {
	// Text is the assistant message content.
	Text string
	// Latency is the wall-clock duration of the call, including retries.
	Latency time.Duration
	// PromptTokens and CompletionTokens report usage when the provider
	// returns it, zero otherwise.
	PromptTokens     int64
	CompletionTokens int64
}

// Client is the uniform model-calling contract. Implementations are
// stateless per call and safe for concurrent use.
type Client interface {
	// Complete sends one chat completion request, retrying transient
	// failures internally. Failures surface as *Error.
	Complete(ctx context.Context, req Request) (Completion, error)
}
