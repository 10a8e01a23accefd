/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"github.com/yw4343/llm-role-framing-and-decision-bias/catalog"
	"github.com/yw4343/llm-role-framing-and-decision-bias/gateway"
	"github.com/yw4343/llm-role-framing-and-decision-bias/judge"
	"github.com/yw4343/llm-role-framing-and-decision-bias/runner"
	"github.com/yw4343/llm-role-framing-and-decision-bias/store"
)

// loadCatalog returns the embedded catalog unless CATALOG_PATH points at
// a custom one.
func loadCatalog(cfg *config) (*catalog.Catalog, error) {
	if cfg.CatalogPath != "" {
		return catalog.Load(cfg.CatalogPath)
	}
	return catalog.Default()
}

// buildRunner assembles the full stack: gateway, judge, catalog, store.
// OPENROUTER_API_KEY provides the default credential; runs may instead
// carry their own key, which builds a fresh gateway just for that run.
func buildRunner(cfg *config) (*runner.Runner, *store.FileStore, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog: %w", err)
	}
	fs, err := store.NewFileStore(cfg.ResultsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening results store: %w", err)
	}

	clients := func(apiKey string) (gateway.Client, judge.Judge, error) {
		client, err := gateway.NewOpenRouter(apiKey)
		if err != nil {
			return nil, nil, fmt.Errorf("creating gateway: %w", err)
		}
		return client, judge.New(client, cfg.JudgeModel, judge.WithTemperature(cfg.JudgeTemperature)), nil
	}

	var (
		client gateway.Client
		j      judge.Judge
	)
	if cfg.APIKey != "" {
		if client, j, err = clients(cfg.APIKey); err != nil {
			return nil, nil, err
		}
	}
	r, err := runner.New(client, j, cat, fs, runner.WithPerRunClients(clients))
	if err != nil {
		return nil, nil, fmt.Errorf("creating runner: %w", err)
	}
	return r, fs, nil
}

// runnerConfig translates the environment config plus command flags into
// a run configuration.
func runnerConfig(cfg *config, models, scenarios, roles []string, iterations int) runner.Config {
	if len(models) == 0 {
		models = []string{cfg.Model1, cfg.Model2}
	}
	if iterations == 0 {
		iterations = cfg.Iterations
	}
	return runner.Config{
		Models:           models,
		JudgeModel:       cfg.JudgeModel,
		ScenarioIDs:      scenarios,
		RoleIDs:          roles,
		Iterations:       iterations,
		Temperature:      &cfg.Temperature,
		JudgeTemperature: cfg.JudgeTemperature,
		MaxTokens:        cfg.MaxTokens,
		Workers:          cfg.Workers,
	}
}
