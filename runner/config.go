/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"fmt"

	"github.com/yw4343/llm-role-framing-and-decision-bias/catalog"
	"github.com/yw4343/llm-role-framing-and-decision-bias/experiment"
)

// Default run parameters. Low response temperature keeps iteration
// variance down; zero judge temperature keeps scoring repeatable.
const (
	DefaultIterations       = 3
	DefaultTemperature      = 0.1
	DefaultJudgeTemperature = 0.0
	DefaultMaxTokens        = 1000
	DefaultWorkers          = 2

	// minModelFamilies is the smallest number of distinct provider
	// families allowed across the response models and the judge, so a
	// model is never scored by a judge from its own family alone.
	minModelFamilies = 3
)

// Config describes one experiment run. Empty ScenarioIDs or RoleIDs
// select the full catalog.
type Config struct {
	// APIKey is an optional per-run credential. When set, the runner
	// builds this run's gateway and judge from it instead of using the
	// shared defaults. It is never written into the config snapshot.
	APIKey string

	Models     []string
	JudgeModel string

	ScenarioIDs []string
	RoleIDs     []string

	Iterations int
	// Temperature is the response sampling temperature; nil means
	// DefaultTemperature, and an explicit zero is honored as zero.
	Temperature      *float64
	JudgeTemperature float64
	MaxTokens        int
	Workers          int
}

// ConfigError reports an invalid run configuration. Validation happens
// before any model call is dispatched.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErr(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}

// withDefaults fills unset numeric fields and empty selections.
func (c Config) withDefaults(cat *catalog.Catalog) Config {
	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}
	if c.Temperature == nil {
		t := DefaultTemperature
		c.Temperature = &t
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if len(c.ScenarioIDs) == 0 {
		c.ScenarioIDs = cat.ScenarioIDs()
	}
	if len(c.RoleIDs) == 0 {
		c.RoleIDs = cat.RoleIDs()
	}
	return c
}

// validate checks the run parameters against the catalog.
func (c Config) validate(cat *catalog.Catalog) error {
	if len(c.Models) < 2 {
		return configErr("models", "need at least two response models, got %d", len(c.Models))
	}
	if c.JudgeModel == "" {
		return configErr("judge_model", "judge model is required")
	}

	families := make(map[string]struct{}, len(c.Models)+1)
	for _, m := range c.Models {
		if m == "" {
			return configErr("models", "empty model id")
		}
		families[catalog.Family(m)] = struct{}{}
	}
	families[catalog.Family(c.JudgeModel)] = struct{}{}
	if len(families) < minModelFamilies {
		return configErr("models", "response models and judge span %d provider families, need at least %d",
			len(families), minModelFamilies)
	}

	for _, id := range c.ScenarioIDs {
		if _, ok := cat.Scenario(id); !ok {
			return configErr("scenario_ids", "unknown scenario %q", id)
		}
	}
	for _, id := range c.RoleIDs {
		if _, ok := cat.Role(id); !ok {
			return configErr("role_ids", "unknown role %q", id)
		}
	}

	if c.Iterations < 1 {
		return configErr("iterations", "must be at least 1, got %d", c.Iterations)
	}
	if *c.Temperature < 0 || *c.Temperature > 2 {
		return configErr("temperature", "must be in [0, 2], got %v", *c.Temperature)
	}
	if c.JudgeTemperature < 0 || c.JudgeTemperature > 2 {
		return configErr("judge_temperature", "must be in [0, 2], got %v", c.JudgeTemperature)
	}
	if c.MaxTokens < 1 {
		return configErr("max_tokens", "must be positive, got %d", c.MaxTokens)
	}
	if c.Workers < 1 {
		return configErr("workers", "must be at least 1, got %d", c.Workers)
	}
	return nil
}

// snapshot converts the config into the form persisted with results.
func (c Config) snapshot() experiment.Config {
	return experiment.Config{
		Models:           c.Models,
		JudgeModel:       c.JudgeModel,
		ScenarioIDs:      c.ScenarioIDs,
		RoleIDs:          c.RoleIDs,
		Iterations:       c.Iterations,
		Temperature:      *c.Temperature,
		JudgeTemperature: c.JudgeTemperature,
		MaxTokens:        c.MaxTokens,
		Workers:          c.Workers,
	}
}
