/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package experiment

import "testing"

func TestScoreAverage(t *testing.T) {
	t.Parallel()

	s := Score{
		Rationality:       5,
		Comprehensiveness: 4,
		AnalyticalDepth:   3,
		Integrity:         5,
		BiasMitigation:    4,
	}
	if got, want := s.Average(), 4.2; got != want {
		t.Errorf("Average = %v, want %v", got, want)
	}
}

func TestFinalize(t *testing.T) {
	t.Parallel()

	record := func(st RecordStatus) DecisionRecord {
		return DecisionRecord{ScenarioID: "s", RoleID: "r", Model: "m", Status: st}
	}

	for _, tc := range []struct {
		name    string
		records []DecisionRecord
		want    ExperimentStatus
	}{
		{
			name:    "all succeeded",
			records: []DecisionRecord{record(RecordSucceeded), record(RecordSucceeded)},
			want:    StatusCompleted,
		},
		{
			name:    "none succeeded",
			records: []DecisionRecord{record(RecordFailed), record(RecordFailed)},
			want:    StatusFailed,
		},
		{
			name:    "no records",
			records: nil,
			want:    StatusFailed,
		},
		{
			name:    "mixed",
			records: []DecisionRecord{record(RecordSucceeded), record(RecordFailed)},
			want:    StatusPartiallyCompleted,
		},
		{
			name:    "evaluation failure is not success",
			records: []DecisionRecord{record(RecordSucceeded), record(RecordEvaluationFailed)},
			want:    StatusPartiallyCompleted,
		},
		{
			name:    "skipped is not success",
			records: []DecisionRecord{record(RecordSucceeded), record(RecordSkipped)},
			want:    StatusPartiallyCompleted,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := New(Config{})
			e.Records = tc.records
			e.Finalize()
			if e.Status != tc.want {
				t.Errorf("Finalize → %q, want %q", e.Status, tc.want)
			}
		})
	}
}

func TestShortID(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	if len(e.RunID) != 36 {
		t.Errorf("expected a UUID run id, got %q", e.RunID)
	}
	if got := e.ShortID(); len(got) != 8 || e.RunID[:8] != got {
		t.Errorf("ShortID = %q, want first 8 of %q", got, e.RunID)
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	e.Records = []DecisionRecord{
		{Status: RecordSucceeded},
		{Status: RecordSucceeded},
		{Status: RecordFailed},
		{Status: RecordEvaluationFailed},
		{Status: RecordSkipped},
	}
	s, f, ef, sk := e.Counts()
	if s != 2 || f != 1 || ef != 1 || sk != 1 {
		t.Errorf("Counts = (%d, %d, %d, %d), want (2, 1, 1, 1)", s, f, ef, sk)
	}
}
