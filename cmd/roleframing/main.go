/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package main is the roleframing CLI: run experiments, serve the HTTP
// API, list stored runs, and analyze results.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

// config is read from the environment. The API key stays here and in the
// HTTP client only; it is never logged or persisted with results.
type config struct {
	APIKey string `env:"OPENROUTER_API_KEY"`

	Model1     string `env:"RESPONSE_MODEL_1,default=openai/gpt-4o"`
	Model2     string `env:"RESPONSE_MODEL_2,default=anthropic/claude-sonnet-4"`
	JudgeModel string `env:"JUDGE_MODEL,default=google/gemini-2.5-pro"`

	Iterations       int     `env:"NUM_ITERATIONS,default=3"`
	Temperature      float64 `env:"RESPONSE_TEMPERATURE,default=0.1"`
	JudgeTemperature float64 `env:"JUDGE_TEMPERATURE,default=0.0"`
	MaxTokens        int     `env:"MAX_TOKENS,default=1000"`
	Workers          int     `env:"WORKERS,default=2"`

	ResultsDir  string `env:"RESULTS_DIR,default=results"`
	CatalogPath string `env:"CATALOG_PATH"`
	Port        int    `env:"PORT,default=8080"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	root := &cobra.Command{
		Use:           "roleframing",
		Short:         "Measure how role framing shifts model decision quality",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRunCommand(&cfg),
		newServeCommand(&cfg),
		newListCommand(&cfg),
		newAnalyzeCommand(&cfg),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		clog.FatalContextf(ctx, "%v", err)
	}
}
