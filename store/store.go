/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package store persists experiments as JSON files, one file per run.
// Writes go through an atomic rename so a crash mid-save never leaves a
// truncated result file behind.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/yw4343/llm-role-framing-and-decision-bias/experiment"
)

// filePrefix and fileSuffix bracket the short run id in result filenames,
// e.g. experiment_1a2b3c4d.json.
const (
	filePrefix = "experiment_"
	fileSuffix = ".json"
)

// NotFoundError reports a run id with no experiment file.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no experiment found for run id %q", e.ID)
}

// FileStore keeps experiment files in a single directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the results directory if needed and returns a
// store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("results directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the results directory.
func (s *FileStore) Dir() string { return s.dir }

// Save writes the experiment to experiment_<short id>.json and returns
// the file path. The write is atomic; an existing file for the same run
// is replaced wholesale.
func (s *FileStore) Save(exp *experiment.Experiment) (string, error) {
	if exp == nil || exp.RunID == "" {
		return "", errors.New("experiment has no run id")
	}

	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding experiment %s: %w", exp.ShortID(), err)
	}

	path := s.Path(exp.ShortID())
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Path returns the file path an experiment with the given short id is
// saved at.
func (s *FileStore) Path(shortID string) string {
	return filepath.Join(s.dir, filePrefix+shortID+fileSuffix)
}

// Load reads an experiment by run id. Both the full UUID and its
// 8-character prefix are accepted. A missing run returns *NotFoundError.
func (s *FileStore) Load(id string) (*experiment.Experiment, error) {
	if id == "" {
		return nil, &NotFoundError{ID: id}
	}
	short := id
	if len(short) > 8 {
		short = short[:8]
	}

	data, err := os.ReadFile(s.Path(short))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("reading experiment %s: %w", short, err)
	}

	var exp experiment.Experiment
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("decoding experiment %s: %w", short, err)
	}
	// A full id must actually match the stored run, not just share a prefix.
	if len(id) > 8 && exp.RunID != id {
		return nil, &NotFoundError{ID: id}
	}
	return &exp, nil
}

// Summary describes one stored experiment without its records.
type Summary struct {
	RunID     string                      `json:"run_id"`
	Timestamp time.Time                   `json:"timestamp"`
	Status    experiment.ExperimentStatus `json:"status"`
	Trials    int                         `json:"trials"`
	Succeeded int                         `json:"succeeded"`
	Failed    int                         `json:"failed"`
	Skipped   int                         `json:"skipped"`
}

// List returns summaries of all stored experiments, newest first. Files
// that fail to decode are skipped so one corrupt result cannot hide the
// rest.
func (s *FileStore) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing results directory: %w", err)
	}

	var sums []Summary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		var exp experiment.Experiment
		if err := json.Unmarshal(data, &exp); err != nil {
			continue
		}
		succeeded, failed, evalFailed, skipped := exp.Counts()
		sums = append(sums, Summary{
			RunID:     exp.RunID,
			Timestamp: exp.Timestamp,
			Status:    exp.Status,
			Trials:    len(exp.Records),
			Succeeded: succeeded,
			Failed:    failed + evalFailed,
			Skipped:   skipped,
		})
	}

	sort.Slice(sums, func(i, j int) bool {
		return sums[i].Timestamp.After(sums[j].Timestamp)
	})
	return sums, nil
}
