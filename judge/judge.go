/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package judge scores model responses against a fixed decision-quality
// rubric using a separate judge model. Parsing is strict: a judge output
// that does not contain a complete, in-range score is an EvaluationError,
// never a defaulted score.
package judge

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/yw4343/llm-role-framing-and-decision-bias/experiment"
	"github.com/yw4343/llm-role-framing-and-decision-bias/gateway"
	"github.com/yw4343/llm-role-framing-and-decision-bias/parse"
	"github.com/yw4343/llm-role-framing-and-decision-bias/prompt"
)

const systemPrompt = `You are an expert evaluator assessing decision-making quality. You judge responses strictly on the quality of their reasoning, not on which option they chose. Respond with only the requested JSON object.`

var rubricTemplate = prompt.Must(`Evaluate the decision response below against the scenario it answers.

Scenario: {{scenario_name}}
The response was written from the perspective of: {{role_name}}

{{scenario}}

{{response}}

Score the response on each dimension as an integer from 1 (poor) to 5 (excellent):

- rationality: Is the reasoning logically sound and free of contradictions?
- comprehensiveness: Does it weigh all the options and the relevant trade-offs?
- analytical_depth: Does it go beyond surface observations to second-order effects?
- integrity: Is it honest about uncertainty and the weaknesses of its choice?
- bias_mitigation: Does it resist framing effects and consider opposing views?

Reply with a JSON object in a ` + "```json" + ` fenced block, with exactly these keys:

` + "```json" + `
{
  "rationality": <1-5>,
  "comprehensiveness": <1-5>,
  "analytical_depth": <1-5>,
  "integrity": <1-5>,
  "bias_mitigation": <1-5>,
  "overall_justification": "<one or two sentences>"
}
` + "```")

// Request carries the material the judge scores: which scenario was being
// answered, the perspective the response was written from, the scenario
// text itself, and the model's full response.
type Request struct {
	ScenarioName        string
	ScenarioDescription string
	RoleName            string
	Response            string
}

// Judge scores a single response. Implementations must be safe for
// concurrent use.
type Judge interface {
	Evaluate(ctx context.Context, req Request) (*experiment.Score, error)
}

// EvaluationError reports a judge output that could not be turned into a
// valid score. RawText preserves the judge's verbatim output so it can be
// persisted on the record for later inspection.
type EvaluationError struct {
	RawText string
	Err     error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("judge output rejected: %v", e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// Model is a Judge backed by a gateway client. The zero temperature and
// small completion budget keep scoring cheap and repeatable.
type Model struct {
	client      gateway.Client
	model       string
	temperature float64
	maxTokens   int64
}

// Option configures a Model judge.
type Option func(*Model)

// WithTemperature overrides the judge sampling temperature.
func WithTemperature(t float64) Option {
	return func(m *Model) { m.temperature = t }
}

// WithMaxTokens overrides the judge completion budget.
func WithMaxTokens(n int64) Option {
	return func(m *Model) { m.maxTokens = n }
}

// New returns a Model judge using the given gateway client and model id.
func New(client gateway.Client, model string, opts ...Option) *Model {
	m := &Model{
		client:      client,
		model:       model,
		temperature: 0.0,
		maxTokens:   256,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// The scenario and response are wrapped in XML elements so the judge can
// tell untrusted model output apart from its own instructions.
type scenarioXML struct {
	XMLName xml.Name `xml:"scenario"`
	Text    string   `xml:",cdata"`
}

type responseXML struct {
	XMLName xml.Name `xml:"response"`
	Text    string   `xml:",cdata"`
}

// Evaluate renders the rubric prompt, calls the judge model, and parses
// its output into a Score. Gateway errors pass through unchanged; a
// response that parses but is incomplete or out of range returns an
// *EvaluationError.
func (m *Model) Evaluate(ctx context.Context, req Request) (*experiment.Score, error) {
	t, err := rubricTemplate.Text("scenario_name", req.ScenarioName)
	if err != nil {
		return nil, err
	}
	t, err = t.Text("role_name", req.RoleName)
	if err != nil {
		return nil, err
	}
	t, err = t.XML("scenario", scenarioXML{Text: req.ScenarioDescription})
	if err != nil {
		return nil, err
	}
	t, err = t.XML("response", responseXML{Text: req.Response})
	if err != nil {
		return nil, err
	}
	rendered, err := t.Render()
	if err != nil {
		return nil, err
	}

	completion, err := m.client.Complete(ctx, gateway.Request{
		Model:       m.model,
		System:      systemPrompt,
		Prompt:      rendered,
		Temperature: m.temperature,
		MaxTokens:   m.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	score, err := parseScore(completion.Text)
	if err != nil {
		return nil, &EvaluationError{RawText: completion.Text, Err: err}
	}
	return score, nil
}

// scorePayload uses pointers so a missing dimension is distinguishable
// from a literal zero.
type scorePayload struct {
	Rationality       *int   `json:"rationality"`
	Comprehensiveness *int   `json:"comprehensiveness"`
	AnalyticalDepth   *int   `json:"analytical_depth"`
	Integrity         *int   `json:"integrity"`
	BiasMitigation    *int   `json:"bias_mitigation"`
	Justification     string `json:"overall_justification"`
}

func parseScore(text string) (*experiment.Score, error) {
	p, err := parse.Extract[scorePayload](text)
	if err != nil {
		return nil, err
	}

	dims := []struct {
		name string
		val  *int
	}{
		{"rationality", p.Rationality},
		{"comprehensiveness", p.Comprehensiveness},
		{"analytical_depth", p.AnalyticalDepth},
		{"integrity", p.Integrity},
		{"bias_mitigation", p.BiasMitigation},
	}
	for _, d := range dims {
		if d.val == nil {
			return nil, fmt.Errorf("missing dimension %q", d.name)
		}
		if *d.val < 1 || *d.val > 5 {
			return nil, fmt.Errorf("dimension %q is %d, outside [1, 5]", d.name, *d.val)
		}
	}

	return &experiment.Score{
		Rationality:       *p.Rationality,
		Comprehensiveness: *p.Comprehensiveness,
		AnalyticalDepth:   *p.AnalyticalDepth,
		Integrity:         *p.Integrity,
		BiasMitigation:    *p.BiasMitigation,
		Justification:     p.Justification,
	}, nil
}
