/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package catalog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yw4343/llm-role-framing-and-decision-bias/catalog"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	c, err := catalog.Default()
	require.NoError(t, err)
	if len(c.Scenarios) < 2 {
		t.Errorf("expected multiple default scenarios, got %d", len(c.Scenarios))
	}
	if _, ok := c.Role("neutral"); !ok {
		t.Error("default catalog is missing the neutral baseline role")
	}
	for _, s := range c.Scenarios {
		if got, ok := c.Scenario(s.ID); !ok || got.ID != s.ID {
			t.Errorf("Scenario(%q) lookup failed", s.ID)
		}
	}
}

func TestParseValidation(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "no scenarios",
			yaml: "scenarios: []\nroles: [{id: neutral, name: Neutral, framing: f}]",
			want: "no scenarios",
		},
		{
			name: "no roles",
			yaml: `
scenarios:
  - id: s1
    name: S1
    description: d
    options: [{letter: A, text: a}, {letter: B, text: b}]
roles: []`,
			want: "no roles",
		},
		{
			name: "duplicate scenario id",
			yaml: `
scenarios:
  - id: s1
    name: S1
    description: d
    options: [{letter: A, text: a}, {letter: B, text: b}]
  - id: s1
    name: S1 again
    description: d
    options: [{letter: A, text: a}, {letter: B, text: b}]
roles: [{id: neutral, name: Neutral, framing: f}]`,
			want: "duplicate scenario id",
		},
		{
			name: "single option",
			yaml: `
scenarios:
  - id: s1
    name: S1
    description: d
    options: [{letter: A, text: a}]
roles: [{id: neutral, name: Neutral, framing: f}]`,
			want: "at least two options",
		},
		{
			name: "letter out of range",
			yaml: `
scenarios:
  - id: s1
    name: S1
    description: d
    options: [{letter: A, text: a}, {letter: E, text: e}]
roles: [{id: neutral, name: Neutral, framing: f}]`,
			want: "must be one of A through D",
		},
		{
			name: "repeated letter",
			yaml: `
scenarios:
  - id: s1
    name: S1
    description: d
    options: [{letter: A, text: a}, {letter: A, text: again}]
roles: [{id: neutral, name: Neutral, framing: f}]`,
			want: "repeats option letter",
		},
		{
			name: "empty framing",
			yaml: `
scenarios:
  - id: s1
    name: S1
    description: d
    options: [{letter: A, text: a}, {letter: B, text: b}]
roles: [{id: r1, name: R1, framing: "  "}]`,
			want: "empty framing",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := catalog.Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRenderPrompt(t *testing.T) {
	t.Parallel()

	role := catalog.Role{ID: "ceo", Name: "CEO", Framing: "You are the CEO."}
	scenario := catalog.Scenario{
		ID:          "s1",
		Name:        "S1",
		Description: "A situation.",
		Options: []catalog.Option{
			{Letter: "A", Text: "First."},
			{Letter: "B", Text: "Second."},
		},
	}

	got, err := catalog.RenderPrompt(role, scenario)
	if err != nil {
		t.Fatalf("RenderPrompt: %v", err)
	}

	if !strings.HasPrefix(got, "You are the CEO.\n\nA situation.") {
		t.Errorf("prompt does not open with framing then description:\n%s", got)
	}
	for _, want := range []string{"A) First.", "B) Second.", "Choice: Option <letter>"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}

	again, err := catalog.RenderPrompt(role, scenario)
	if err != nil {
		t.Fatalf("RenderPrompt (second call): %v", err)
	}
	if got != again {
		t.Error("RenderPrompt is not deterministic for identical inputs")
	}
}

func TestFamily(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want string
	}{
		{"openai/gpt-4o", "openai"},
		{"Anthropic/claude-sonnet-4", "anthropic"},
		{"google/gemini-2.5-pro", "google"},
		{"meta-llama/llama-3.3-70b-instruct", "meta-llama"},
		{"local-model", "local-model"},
		{"  openai/gpt-4o  ", "openai"},
	} {
		if got := catalog.Family(tc.in); got != tc.want {
			t.Errorf("Family(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
