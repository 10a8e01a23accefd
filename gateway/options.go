/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package gateway

import (
	"errors"
	"fmt"
	"time"

	"github.com/yw4343/llm-role-framing-and-decision-bias/gateway/retry"
)

// clientConfig collects construction-time settings that are consumed by the
// underlying HTTP client rather than stored on the gateway.
type clientConfig struct {
	baseURL string
	referer string
}

// Option is a functional option for configuring the OpenRouter gateway.
type Option func(*OpenRouter, *clientConfig) error

// WithBaseURL overrides the API endpoint. Useful for tests and for
// OpenRouter-compatible proxies.
func WithBaseURL(url string) Option {
	return func(_ *OpenRouter, cfg *clientConfig) error {
		if url == "" {
			return errors.New("base URL cannot be empty")
		}
		cfg.baseURL = url
		return nil
	}
}

// WithHTTPReferer sets the HTTP-Referer header OpenRouter uses for app
// attribution.
func WithHTTPReferer(referer string) Option {
	return func(_ *OpenRouter, cfg *clientConfig) error {
		cfg.referer = referer
		return nil
	}
}

// WithRequestTimeout sets the per-attempt timeout for completion calls.
func WithRequestTimeout(d time.Duration) Option {
	return func(g *OpenRouter, _ *clientConfig) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive, got %v", d)
		}
		g.requestTimeout = d
		return nil
	}
}

// WithRetryConfig sets the retry policy for transient provider errors,
// particularly 429 rate limits on shared OpenRouter quota.
func WithRetryConfig(cfg retry.Config) Option {
	return func(g *OpenRouter, _ *clientConfig) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		g.retryConfig = cfg
		return nil
	}
}
