/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package parse

import (
	"regexp"
	"strings"
)

// Choice-extraction patterns, tried in order. The prompt instructs models
// to end with a "Choice: Option X" line, so that form is authoritative; the
// fallbacks catch models that answer "A)" or "I would choose B" instead.
var (
	choicePrimary = regexp.MustCompile(`(?i)choice:\s*option\s+([A-Da-d])\b`)
	choiceParen   = regexp.MustCompile(`\b([A-D])\s*\)`)
	// Keywords are case-insensitive but the letter is not: "choose a
	// path" must not read as option A.
	choiceVerbForm = regexp.MustCompile(`(?i:option|choice|select|answer|decision|recommendation|choose)\s+([A-D])\b`)
)

// ExtractChoice maps a free-text decision response to one of the
// enumerated options "A" through "D". The second return is false when no
// pattern matches; callers must keep the record's decision empty rather
// than guess.
func ExtractChoice(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	for _, re := range []*regexp.Regexp{choicePrimary, choiceParen, choiceVerbForm} {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.ToUpper(m[1]), true
		}
	}
	return "", false
}
