/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package analyze

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/yw4343/llm-role-framing-and-decision-bias/experiment"
)

// newMarkdownTable creates a table writer with the formatting shared by
// every report section.
func newMarkdownTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		MaxWidth: 100,
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// Report renders a markdown report for one experiment: run summary,
// score aggregates by role, model, and scenario, and per-role deltas
// against the neutral baseline.
func Report(exp *experiment.Experiment) string {
	var report strings.Builder

	succeeded, failed, evalFailed, skipped := exp.Counts()
	fmt.Fprintf(&report, "# Experiment %s\n\n", exp.ShortID())
	fmt.Fprintf(&report, "Status: %s\n\n", exp.Status)
	fmt.Fprintf(&report, "Trials: %d succeeded, %d failed, %d evaluation failed, %d skipped\n\n",
		succeeded, failed, evalFailed, skipped)
	fmt.Fprintf(&report, "Models: %s (judge: %s)\n\n",
		strings.Join(exp.Config.Models, ", "), exp.Config.JudgeModel)

	rows := Flatten(exp)
	if len(rows) == 0 {
		report.WriteString("No scored trials to analyze.\n")
		return report.String()
	}

	report.WriteString(groupSection("Scores by Role", "Role", ByRole(rows)))
	report.WriteString(groupSection("Scores by Model", "Model", ByModel(rows)))
	report.WriteString(groupSection("Scores by Scenario", "Scenario", ByScenario(rows)))

	if deltas := RoleDeltas(rows); len(deltas) > 0 {
		report.WriteString(deltaSection(deltas))
	}

	return report.String()
}

func groupSection(title, keyHeader string, groups []Group) string {
	headers := append([]string{keyHeader, "Trials", "Mean", "StdDev"}, Dimensions...)
	headers = append(headers, "Decisions")

	var buf bytes.Buffer
	table := newMarkdownTable(headers, &buf)
	for _, g := range groups {
		row := []string{
			g.Key,
			fmt.Sprintf("%d", g.Overall.Count),
			fmt.Sprintf("%.2f", g.Overall.Mean),
			fmt.Sprintf("%.2f", g.Overall.StdDev),
		}
		for _, name := range Dimensions {
			row = append(row, fmt.Sprintf("%.2f", g.Dimensions[name]))
		}
		row = append(row, formatDecisions(g.Decisions))
		_ = table.Append(row)
	}
	_ = table.Render()

	return fmt.Sprintf("## %s\n\n%s\n", title, buf.String())
}

func deltaSection(deltas []Delta) string {
	headers := append([]string{"Role", "Mean", "Baseline", "Diff"}, Dimensions...)

	var buf bytes.Buffer
	table := newMarkdownTable(headers, &buf)
	for _, d := range deltas {
		row := []string{
			d.RoleID,
			fmt.Sprintf("%.2f", d.Mean),
			fmt.Sprintf("%.2f", d.Baseline),
			fmt.Sprintf("%+.2f", d.Diff),
		}
		for _, name := range Dimensions {
			row = append(row, fmt.Sprintf("%+.2f", d.Dimensions[name]))
		}
		_ = table.Append(row)
	}
	_ = table.Render()

	return fmt.Sprintf("## Role Shift vs %s\n\n%s\n", BaselineRole, buf.String())
}

// formatDecisions renders a decision distribution as "A:3 B:1" with the
// letters in order.
func formatDecisions(decisions map[string]int) string {
	if len(decisions) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(decisions))
	for _, letter := range []string{"A", "B", "C", "D"} {
		if n, ok := decisions[letter]; ok {
			parts = append(parts, fmt.Sprintf("%s:%d", letter, n))
		}
	}
	return strings.Join(parts, " ")
}
