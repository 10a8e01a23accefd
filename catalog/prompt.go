/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"fmt"
	"strings"

	"github.com/yw4343/llm-role-framing-and-decision-bias/prompt"
)

var decisionTemplate = prompt.Must(`{{framing}}

{{description}}

Options:
{{options}}

Consider each option carefully and explain your reasoning. End your answer with a single line in exactly this form:

Choice: Option <letter>`)

// RenderPrompt produces the full decision prompt for one trial: the role's
// framing, the scenario, its lettered options, and the answer-format
// instruction. Rendering is deterministic for a given role and scenario.
func RenderPrompt(role Role, scenario Scenario) (string, error) {
	t, err := decisionTemplate.Text("framing", strings.TrimSpace(role.Framing))
	if err != nil {
		return "", err
	}
	t, err = t.Text("description", strings.TrimSpace(scenario.Description))
	if err != nil {
		return "", err
	}
	t, err = t.Text("options", formatOptions(scenario.Options))
	if err != nil {
		return "", err
	}

	rendered, err := t.Render()
	if err != nil {
		return "", fmt.Errorf("rendering prompt for scenario %q role %q: %w", scenario.ID, role.ID, err)
	}
	return rendered, nil
}

func formatOptions(opts []Option) string {
	lines := make([]string, len(opts))
	for i, o := range opts {
		lines[i] = fmt.Sprintf("%s) %s", o.Letter, o.Text)
	}
	return strings.Join(lines, "\n")
}
