/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package server exposes experiment runs over HTTP. Handlers stay thin:
// they translate requests into runner and store calls and statuses into
// HTTP codes, nothing more.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/chainguard-dev/clog"
	"github.com/gorilla/mux"

	"github.com/yw4343/llm-role-framing-and-decision-bias/analyze"
	"github.com/yw4343/llm-role-framing-and-decision-bias/experiment"
	"github.com/yw4343/llm-role-framing-and-decision-bias/runner"
	"github.com/yw4343/llm-role-framing-and-decision-bias/store"
)

// Server tracks in-flight runs and serves the experiment API.
type Server struct {
	runner *runner.Runner
	store  *store.FileStore

	mu   sync.Mutex
	runs map[string]*runner.Run
}

// New creates a Server around a runner and its result store.
func New(r *runner.Runner, s *store.FileStore) *Server {
	return &Server{
		runner: r,
		store:  s,
		runs:   make(map[string]*runner.Run),
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/experiments/run", s.handleRun).Methods(http.MethodPost)
	r.HandleFunc("/api/experiments", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/experiments/{id}/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/experiments/{id}/stop", s.handleStop).Methods(http.MethodPost)
	r.HandleFunc("/api/experiments/{id}/results", s.handleResults).Methods(http.MethodGet)
	r.HandleFunc("/api/experiments/{id}/response/{index}", s.handleRecord).Methods(http.MethodGet)
	r.HandleFunc("/api/experiments/{id}/download", s.handleDownload).Methods(http.MethodGet)
	return r
}

// runRequest is the JSON body of POST /api/experiments/run. APIKey is
// used for this run's model calls only and is never persisted or logged.
type runRequest struct {
	APIKey           string   `json:"api_key"`
	Models           []string `json:"models"`
	JudgeModel       string   `json:"judge_model"`
	ScenarioIDs      []string `json:"scenario_ids"`
	RoleIDs          []string `json:"role_ids"`
	Iterations       int      `json:"iterations"`
	Temperature      *float64 `json:"temperature"`
	JudgeTemperature float64  `json:"judge_temperature"`
	MaxTokens        int      `json:"max_tokens"`
	Workers          int      `json:"workers"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	run, err := s.runner.Start(r.Context(), runner.Config{
		APIKey:           req.APIKey,
		Models:           req.Models,
		JudgeModel:       req.JudgeModel,
		ScenarioIDs:      req.ScenarioIDs,
		RoleIDs:          req.RoleIDs,
		Iterations:       req.Iterations,
		Temperature:      req.Temperature,
		JudgeTemperature: req.JudgeTemperature,
		MaxTokens:        req.MaxTokens,
		Workers:          req.Workers,
	})
	if err != nil {
		var cfgErr *runner.ConfigError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.mu.Lock()
	s.runs[run.RunID()] = run
	s.mu.Unlock()
	go s.evictWhenDone(run)

	clog.FromContext(r.Context()).With("run_id", run.RunID()).Info("Run started")
	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": run.RunID()})
}

// evictWhenDone drops the run from memory once it finishes and its
// experiment is loadable from the store, so the map does not grow with
// the lifetime of the process. A run whose results never made it to disk
// stays reachable.
func (s *Server) evictWhenDone(run *runner.Run) {
	if _, err := run.Wait(context.Background()); err != nil {
		return
	}
	if _, err := s.store.Load(run.RunID()); err != nil {
		return
	}
	s.mu.Lock()
	delete(s.runs, run.RunID())
	s.mu.Unlock()
}

func (s *Server) activeRun(id string) (*runner.Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	return run, ok
}

// statusResponse is the body of GET /api/experiments/{id}/status.
type statusResponse struct {
	runner.Status
	Events []runner.Event `json:"events,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if run, ok := s.activeRun(id); ok {
		writeJSON(w, http.StatusOK, statusResponse{
			Status: run.Status(),
			Events: run.Events(),
		})
		return
	}

	// Not in memory: fall back to a stored experiment, e.g. after a
	// server restart.
	exp, err := s.store.Load(id)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	succeeded, failed, evalFailed, skipped := exp.Counts()
	writeJSON(w, http.StatusOK, statusResponse{
		Status: runner.Status{
			RunID:     exp.RunID,
			State:     exp.Status,
			Total:     len(exp.Records),
			Done:      len(exp.Records),
			Succeeded: succeeded,
			Failed:    failed + evalFailed,
			Skipped:   skipped,
			Path:      s.store.Path(exp.ShortID()),
		},
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	run, ok := s.activeRun(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no active run %q", id))
		return
	}
	run.Cancel()
	clog.FromContext(r.Context()).With("run_id", id).Info("Run cancellation requested")
	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": id, "state": "stopping"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	sums, err := s.store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if sums == nil {
		sums = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, sums)
}

// resultsResponse is the body of GET /api/experiments/{id}/results: the
// scored trials flattened for consumption, not the raw record dump (that
// is what download serves).
type resultsResponse struct {
	RunID  string                      `json:"run_id"`
	Status experiment.ExperimentStatus `json:"status"`
	Rows   []analyze.Row               `json:"rows"`
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	exp, err := s.store.Load(id)
	if err != nil {
		if _, active := s.activeRun(id); active {
			writeError(w, http.StatusConflict, fmt.Errorf("run %q is still in progress", id))
			return
		}
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{
		RunID:  exp.RunID,
		Status: exp.Status,
		Rows:   analyze.Flatten(exp),
	})
}

// handleRecord serves one trial record by its position in the stored
// experiment's responses array.
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	exp, err := s.store.Load(id)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	index, err := strconv.Atoi(vars["index"])
	if err != nil || index < 0 || index >= len(exp.Records) {
		writeError(w, http.StatusNotFound,
			fmt.Errorf("run %q has no response %q", id, vars["index"]))
		return
	}
	writeJSON(w, http.StatusOK, exp.Records[index])
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	exp, err := s.store.Load(id)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("experiment_%s.json", exp.ShortID())))
	http.ServeFile(w, r, s.store.Path(exp.ShortID()))
}

func writeLoadError(w http.ResponseWriter, err error) {
	var nfe *store.NotFoundError
	if errors.As(err, &nfe) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
