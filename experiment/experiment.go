/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package experiment defines the persisted data model of a run: the
// per-trial decision records, the judge's rubric scores, and the
// experiment envelope that ties them to a run id and config snapshot.
package experiment

import (
	"time"

	"github.com/google/uuid"
)

// ExperimentStatus tracks the lifecycle of a run.
type ExperimentStatus string

const (
	// StatusCreated is a run that has been validated but not started.
	StatusCreated ExperimentStatus = "created"
	// StatusRunning is a run with trials in flight.
	StatusRunning ExperimentStatus = "running"
	// StatusCompleted is a run where every trial succeeded.
	StatusCompleted ExperimentStatus = "completed"
	// StatusPartiallyCompleted is a run that finished with at least one
	// failed or skipped trial alongside at least one success.
	StatusPartiallyCompleted ExperimentStatus = "partially_completed"
	// StatusFailed is a run where no trial succeeded.
	StatusFailed ExperimentStatus = "failed"
)

// RecordStatus is the outcome of a single trial.
type RecordStatus string

const (
	// RecordSucceeded means the model responded and the judge scored it.
	RecordSucceeded RecordStatus = "succeeded"
	// RecordFailed means the model call failed after retries.
	RecordFailed RecordStatus = "failed"
	// RecordEvaluationFailed means the model responded but the judge's
	// output could not be parsed into a valid score.
	RecordEvaluationFailed RecordStatus = "evaluation_failed"
	// RecordSkipped means the trial was never dispatched, typically
	// because the run was cancelled first.
	RecordSkipped RecordStatus = "skipped"
)

// Score is the judge's rubric assessment of one response. Each dimension
// is an integer in [1, 5].
type Score struct {
	Rationality       int    `json:"rationality"`
	Comprehensiveness int    `json:"comprehensiveness"`
	AnalyticalDepth   int    `json:"analytical_depth"`
	Integrity         int    `json:"integrity"`
	BiasMitigation    int    `json:"bias_mitigation"`
	Justification     string `json:"overall_justification"`
}

// Average returns the mean of the five rubric dimensions.
func (s Score) Average() float64 {
	sum := s.Rationality + s.Comprehensiveness + s.AnalyticalDepth + s.Integrity + s.BiasMitigation
	return float64(sum) / 5.0
}

// DecisionRecord captures one trial: the prompt sent, the model's
// response, the extracted decision, and the judge's evaluation.
type DecisionRecord struct {
	ScenarioID string       `json:"scenario_id"`
	RoleID     string       `json:"role_id"`
	Model      string       `json:"model"`
	Iteration  int          `json:"iteration"`
	Status     RecordStatus `json:"status"`

	Prompt   string `json:"prompt,omitempty"`
	Response string `json:"response,omitempty"`

	// Decision is the extracted option letter, empty when no choice
	// pattern matched the response.
	Decision string `json:"decision,omitempty"`

	Evaluation *Score `json:"evaluation,omitempty"`
	// RawEvaluation preserves the judge's verbatim output when it could
	// not be parsed into a Score.
	RawEvaluation string `json:"raw_evaluation,omitempty"`

	FailureReason string        `json:"failure_reason,omitempty"`
	Latency       time.Duration `json:"latency_ns,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Config is the snapshot of run parameters persisted with the results so
// an experiment file is self-describing. It never contains credentials.
type Config struct {
	Models           []string `json:"models"`
	JudgeModel       string   `json:"judge_model"`
	ScenarioIDs      []string `json:"scenario_ids"`
	RoleIDs          []string `json:"role_ids"`
	Iterations       int      `json:"iterations"`
	Temperature      float64  `json:"temperature"`
	JudgeTemperature float64  `json:"judge_temperature"`
	MaxTokens        int      `json:"max_tokens"`
	Workers          int      `json:"workers"`
}

// Experiment is a complete run: identity, config snapshot, and one record
// per (scenario, role, model, iteration) trial.
type Experiment struct {
	RunID     string           `json:"run_id"`
	Timestamp time.Time        `json:"timestamp"`
	Status    ExperimentStatus `json:"status"`
	Config    Config           `json:"config"`
	Records   []DecisionRecord `json:"responses"`
}

// New creates an experiment envelope with a fresh run id.
func New(cfg Config) *Experiment {
	return &Experiment{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Status:    StatusCreated,
		Config:    cfg,
	}
}

// ShortID is the 8-character prefix of the run id used in filenames and
// display output.
func (e *Experiment) ShortID() string {
	if len(e.RunID) < 8 {
		return e.RunID
	}
	return e.RunID[:8]
}

// Finalize sets the terminal status from the record outcomes: completed
// when every trial succeeded, failed when none did, and partially
// completed otherwise.
func (e *Experiment) Finalize() {
	var succeeded, other int
	for _, r := range e.Records {
		if r.Status == RecordSucceeded {
			succeeded++
		} else {
			other++
		}
	}
	switch {
	case other == 0 && succeeded > 0:
		e.Status = StatusCompleted
	case succeeded == 0:
		e.Status = StatusFailed
	default:
		e.Status = StatusPartiallyCompleted
	}
}

// Counts returns the number of records in each terminal state.
func (e *Experiment) Counts() (succeeded, failed, evalFailed, skipped int) {
	for _, r := range e.Records {
		switch r.Status {
		case RecordSucceeded:
			succeeded++
		case RecordFailed:
			failed++
		case RecordEvaluationFailed:
			evalFailed++
		case RecordSkipped:
			skipped++
		}
	}
	return
}
