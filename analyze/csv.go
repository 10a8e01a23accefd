/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package analyze

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV exports scored rows in a flat tabular form suitable for
// spreadsheet or notebook analysis, one trial per line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	header := append([]string{"scenario_id", "role_id", "model", "family", "iteration", "decision"}, Dimensions...)
	header = append(header, "average")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, row := range rows {
		dims := dimensionValues(row.Score)
		record := []string{
			row.ScenarioID,
			row.RoleID,
			row.Model,
			row.Family,
			strconv.Itoa(row.Iteration),
			row.Decision,
		}
		for _, name := range Dimensions {
			record = append(record, strconv.Itoa(dims[name]))
		}
		record = append(record, strconv.FormatFloat(row.Average, 'f', 2, 64))
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
