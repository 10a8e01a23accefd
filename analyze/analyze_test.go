/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package analyze_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/yw4343/llm-role-framing-and-decision-bias/analyze"
	"github.com/yw4343/llm-role-framing-and-decision-bias/experiment"
)

func score(all int) *experiment.Score {
	return &experiment.Score{
		Rationality:       all,
		Comprehensiveness: all,
		AnalyticalDepth:   all,
		Integrity:         all,
		BiasMitigation:    all,
	}
}

func record(scenario, role, model, decision string, s *experiment.Score) experiment.DecisionRecord {
	return experiment.DecisionRecord{
		ScenarioID: scenario,
		RoleID:     role,
		Model:      model,
		Iteration:  1,
		Status:     experiment.RecordSucceeded,
		Decision:   decision,
		Evaluation: s,
	}
}

func testExperiment() *experiment.Experiment {
	exp := experiment.New(experiment.Config{
		Models:     []string{"openai/gpt-4o", "anthropic/claude-sonnet-4"},
		JudgeModel: "google/gemini-2.5-pro",
	})
	exp.Records = []experiment.DecisionRecord{
		record("s1", "neutral", "openai/gpt-4o", "A", score(3)),
		record("s1", "neutral", "anthropic/claude-sonnet-4", "A", score(3)),
		record("s1", "ceo", "openai/gpt-4o", "B", score(4)),
		record("s1", "ceo", "anthropic/claude-sonnet-4", "B", score(2)),
		// Failures carry no score and must not show up in rows.
		{ScenarioID: "s1", RoleID: "ceo", Model: "openai/gpt-4o", Status: experiment.RecordFailed},
		{ScenarioID: "s1", RoleID: "ceo", Model: "openai/gpt-4o", Status: experiment.RecordEvaluationFailed},
	}
	exp.Finalize()
	return exp
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	rows := analyze.Flatten(testExperiment())
	if len(rows) != 4 {
		t.Fatalf("Flatten returned %d rows, want 4", len(rows))
	}
	if rows[0].Family != "openai" || rows[1].Family != "anthropic" {
		t.Errorf("families = %q, %q", rows[0].Family, rows[1].Family)
	}
	if rows[0].Average != 3.0 {
		t.Errorf("average = %v, want 3.0", rows[0].Average)
	}
}

func TestByRole(t *testing.T) {
	t.Parallel()

	groups := analyze.ByRole(analyze.Flatten(testExperiment()))
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	// Sorted by key: ceo before neutral.
	ceo, neutral := groups[0], groups[1]
	if ceo.Key != "ceo" || neutral.Key != "neutral" {
		t.Fatalf("group keys = %q, %q", ceo.Key, neutral.Key)
	}

	if ceo.Overall.Count != 2 || ceo.Overall.Mean != 3.0 {
		t.Errorf("ceo stats = %+v, want count 2 mean 3.0", ceo.Overall)
	}
	// Scores 4 and 2: population standard deviation 1.
	if math.Abs(ceo.Overall.StdDev-1.0) > 1e-9 {
		t.Errorf("ceo stddev = %v, want 1.0", ceo.Overall.StdDev)
	}
	if neutral.Overall.StdDev != 0 {
		t.Errorf("neutral stddev = %v, want 0", neutral.Overall.StdDev)
	}
	if ceo.Decisions["B"] != 2 || neutral.Decisions["A"] != 2 {
		t.Errorf("decision counts: ceo=%v neutral=%v", ceo.Decisions, neutral.Decisions)
	}
	if got := ceo.Dimensions["rationality"]; got != 3.0 {
		t.Errorf("ceo rationality mean = %v, want 3.0", got)
	}
}

func TestRoleDeltas(t *testing.T) {
	t.Parallel()

	deltas := analyze.RoleDeltas(analyze.Flatten(testExperiment()))
	if len(deltas) != 1 {
		t.Fatalf("got %d deltas, want 1", len(deltas))
	}
	d := deltas[0]
	if d.RoleID != "ceo" || d.Baseline != 3.0 || d.Diff != 0.0 {
		t.Errorf("delta = %+v", d)
	}
}

func TestRoleDeltasNoBaseline(t *testing.T) {
	t.Parallel()

	exp := testExperiment()
	var records []experiment.DecisionRecord
	for _, rec := range exp.Records {
		if rec.RoleID != "neutral" {
			records = append(records, rec)
		}
	}
	exp.Records = records

	if deltas := analyze.RoleDeltas(analyze.Flatten(exp)); deltas != nil {
		t.Errorf("expected nil deltas without a baseline, got %v", deltas)
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	report := analyze.Report(testExperiment())
	for _, want := range []string{
		"Scores by Role",
		"Scores by Model",
		"Scores by Scenario",
		"Role Shift vs neutral",
		"ceo",
		"openai/gpt-4o",
		"B:2",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestReportEmptyExperiment(t *testing.T) {
	t.Parallel()

	exp := experiment.New(experiment.Config{})
	exp.Finalize()
	report := analyze.Report(exp)
	if !strings.Contains(report, "No scored trials") {
		t.Errorf("empty report = %q", report)
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rows := analyze.Flatten(testExperiment())
	if err := analyze.WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("CSV has %d lines, want header + 4 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "scenario_id,role_id,model,family,iteration,decision,rationality") {
		t.Errorf("CSV header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "s1,neutral,openai/gpt-4o,openai,1,A,3,3,3,3,3,3.00") {
		t.Errorf("CSV row = %q", lines[1])
	}
}
