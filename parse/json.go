/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package parse holds every heuristic that interprets free-form model
// output: fenced-JSON extraction for judge responses and choice extraction
// for decision responses. Nothing outside this package guesses at model
// text, which keeps the fallible parsing surface small and fuzzable.
package parse

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ExtractJSON extracts JSON content from a model response that may wrap it
// in markdown code fences. It looks for a ```json block first and falls
// back to stripping bare fences or returning the trimmed input.
func ExtractJSON(text string) string {
	lines := strings.Split(text, "\n")
	var buf bytes.Buffer
	inBlock := false
	found := false

	for _, line := range lines {
		if !inBlock && strings.TrimSpace(line) == "```json" {
			inBlock = true
			found = true
			continue
		}
		if inBlock && strings.TrimSpace(line) == "```" {
			break
		}
		if inBlock {
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(line)
		}
	}

	if found {
		// An empty ```json block yields "", which the caller treats as
		// a parse failure.
		return strings.TrimSpace(buf.String())
	}

	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") && strings.HasSuffix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		return strings.TrimSpace(text)
	}

	// These do nothing when the fences aren't there.
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// Extract extracts JSON content from a model response and unmarshals it
// into T.
func Extract[T any](text string) (T, error) {
	var result T
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &result); err != nil {
		return result, err
	}
	return result, nil
}
