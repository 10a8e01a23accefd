/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package analyze turns persisted experiments into aggregate statistics:
// mean and spread of judge scores grouped by role, scenario, and model,
// plus per-role deltas against the neutral baseline.
package analyze

import (
	"math"
	"sort"

	"github.com/yw4343/llm-role-framing-and-decision-bias/catalog"
	"github.com/yw4343/llm-role-framing-and-decision-bias/experiment"
)

// BaselineRole is the role deltas are measured against.
const BaselineRole = "neutral"

// Dimensions lists the rubric dimensions in display order.
var Dimensions = []string{
	"rationality",
	"comprehensiveness",
	"analytical_depth",
	"integrity",
	"bias_mitigation",
}

// Row is one scored trial flattened for aggregation. Only succeeded
// records become rows; failures carry no score to aggregate.
type Row struct {
	ScenarioID string           `json:"scenario_id"`
	RoleID     string           `json:"role_id"`
	Model      string           `json:"model"`
	Family     string           `json:"family"`
	Iteration  int              `json:"iteration"`
	Decision   string           `json:"decision,omitempty"`
	Score      experiment.Score `json:"score"`
	Average    float64          `json:"average"`
}

// Flatten extracts the scored rows of an experiment.
func Flatten(exp *experiment.Experiment) []Row {
	var rows []Row
	for _, rec := range exp.Records {
		if rec.Status != experiment.RecordSucceeded || rec.Evaluation == nil {
			continue
		}
		rows = append(rows, Row{
			ScenarioID: rec.ScenarioID,
			RoleID:     rec.RoleID,
			Model:      rec.Model,
			Family:     catalog.Family(rec.Model),
			Iteration:  rec.Iteration,
			Decision:   rec.Decision,
			Score:      *rec.Evaluation,
			Average:    rec.Evaluation.Average(),
		})
	}
	return rows
}

// Stats summarizes a set of values.
type Stats struct {
	Count  int
	Mean   float64
	StdDev float64
}

func newStats(values []float64) Stats {
	n := len(values)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return Stats{
		Count:  n,
		Mean:   mean,
		StdDev: math.Sqrt(sq / float64(n)),
	}
}

// Group is the aggregate for one grouping key: overall score statistics,
// mean per rubric dimension, and the distribution of extracted decisions.
type Group struct {
	Key        string
	Overall    Stats
	Dimensions map[string]float64
	Decisions  map[string]int
}

func dimensionValues(s experiment.Score) map[string]int {
	return map[string]int{
		"rationality":       s.Rationality,
		"comprehensiveness": s.Comprehensiveness,
		"analytical_depth":  s.AnalyticalDepth,
		"integrity":         s.Integrity,
		"bias_mitigation":   s.BiasMitigation,
	}
}

func groupBy(rows []Row, key func(Row) string) []Group {
	averages := make(map[string][]float64)
	dims := make(map[string]map[string][]float64)
	decisions := make(map[string]map[string]int)

	for _, row := range rows {
		k := key(row)
		averages[k] = append(averages[k], row.Average)
		if dims[k] == nil {
			dims[k] = make(map[string][]float64)
			decisions[k] = make(map[string]int)
		}
		for name, v := range dimensionValues(row.Score) {
			dims[k][name] = append(dims[k][name], float64(v))
		}
		if row.Decision != "" {
			decisions[k][row.Decision]++
		}
	}

	keys := make([]string, 0, len(averages))
	for k := range averages {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		g := Group{
			Key:        k,
			Overall:    newStats(averages[k]),
			Dimensions: make(map[string]float64, len(Dimensions)),
			Decisions:  decisions[k],
		}
		for name, vals := range dims[k] {
			g.Dimensions[name] = newStats(vals).Mean
		}
		groups = append(groups, g)
	}
	return groups
}

// ByRole aggregates rows per role id, sorted by key.
func ByRole(rows []Row) []Group {
	return groupBy(rows, func(r Row) string { return r.RoleID })
}

// ByScenario aggregates rows per scenario id, sorted by key.
func ByScenario(rows []Row) []Group {
	return groupBy(rows, func(r Row) string { return r.ScenarioID })
}

// ByModel aggregates rows per model id, sorted by key.
func ByModel(rows []Row) []Group {
	return groupBy(rows, func(r Row) string { return r.Model })
}

// Delta is a role's score shift relative to the neutral baseline.
type Delta struct {
	RoleID     string
	Mean       float64
	Baseline   float64
	Diff       float64
	Dimensions map[string]float64
}

// RoleDeltas compares each non-baseline role against the baseline role.
// It returns nil when the experiment has no baseline rows to compare
// against.
func RoleDeltas(rows []Row) []Delta {
	groups := ByRole(rows)

	var base *Group
	for i := range groups {
		if groups[i].Key == BaselineRole {
			base = &groups[i]
			break
		}
	}
	if base == nil || base.Overall.Count == 0 {
		return nil
	}

	var deltas []Delta
	for _, g := range groups {
		if g.Key == BaselineRole {
			continue
		}
		d := Delta{
			RoleID:     g.Key,
			Mean:       g.Overall.Mean,
			Baseline:   base.Overall.Mean,
			Diff:       g.Overall.Mean - base.Overall.Mean,
			Dimensions: make(map[string]float64, len(Dimensions)),
		}
		for _, name := range Dimensions {
			d.Dimensions[name] = g.Dimensions[name] - base.Dimensions[name]
		}
		deltas = append(deltas, d)
	}
	return deltas
}
