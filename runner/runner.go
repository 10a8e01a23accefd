/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package runner expands a run configuration into its full trial matrix,
// drives the trials through the gateway and the judge on a bounded worker
// pool, and persists the finished experiment. One trial failing never
// aborts the rest of the run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"

	"github.com/yw4343/llm-role-framing-and-decision-bias/catalog"
	"github.com/yw4343/llm-role-framing-and-decision-bias/experiment"
	"github.com/yw4343/llm-role-framing-and-decision-bias/gateway"
	"github.com/yw4343/llm-role-framing-and-decision-bias/judge"
	"github.com/yw4343/llm-role-framing-and-decision-bias/metrics"
	"github.com/yw4343/llm-role-framing-and-decision-bias/parse"
)

// Store persists finished experiments. *store.FileStore satisfies this.
type Store interface {
	Save(exp *experiment.Experiment) (path string, err error)
}

// ClientsFunc builds a gateway and judge for a run that carries its own
// API key. The key must reach only the returned client, never a log line
// or an error message.
type ClientsFunc func(apiKey string) (gateway.Client, judge.Judge, error)

// Runner owns the dependencies shared by every run: a response gateway,
// a judge, the catalog, and a result store.
type Runner struct {
	client  gateway.Client
	judge   judge.Judge
	catalog *catalog.Catalog
	store   Store
	metrics *metrics.Experiment

	newClients ClientsFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithPerRunClients lets a run supply its own API key: runs whose Config
// carries a key get a gateway and judge from f instead of the defaults.
func WithPerRunClients(f ClientsFunc) Option {
	return func(r *Runner) { r.newClients = f }
}

// New assembles a Runner. The catalog and store are always required; the
// default client and judge may be nil only when WithPerRunClients is
// provided, in which case every run must carry its own key.
func New(client gateway.Client, j judge.Judge, cat *catalog.Catalog, store Store, opts ...Option) (*Runner, error) {
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}
	r := &Runner{
		client:  client,
		judge:   j,
		catalog: cat,
		store:   store,
		metrics: metrics.NewExperiment("roleframing.runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if (r.client == nil || r.judge == nil) && r.newClients == nil {
		return nil, errors.New("gateway client and judge are required without per-run clients")
	}
	return r, nil
}

// trial is one cell of the (scenario, role, model, iteration) matrix.
type trial struct {
	index     int
	scenario  catalog.Scenario
	role      catalog.Role
	model     string
	iteration int
}

// Event is one entry in a run's progress log.
type Event struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Status is a point-in-time snapshot of a run's progress.
type Status struct {
	RunID     string                      `json:"run_id"`
	State     experiment.ExperimentStatus `json:"state"`
	Total     int                         `json:"total"`
	Done      int                         `json:"done"`
	Succeeded int                         `json:"succeeded"`
	Failed    int                         `json:"failed"`
	Skipped   int                         `json:"skipped"`
	// Path is where the experiment was saved, set once the run finishes.
	Path string `json:"path,omitempty"`
}

// Run is an in-flight or finished experiment run.
type Run struct {
	exp    *experiment.Experiment
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	state  experiment.ExperimentStatus
	events []Event
	nDone  int
	path   string
	runErr error
}

// Start validates the configuration, then launches the run in the
// background and returns immediately. Validation failures surface as
// *ConfigError before any model call is made.
func (r *Runner) Start(ctx context.Context, cfg Config) (*Run, error) {
	cfg = cfg.withDefaults(r.catalog)
	if err := cfg.validate(r.catalog); err != nil {
		return nil, err
	}

	client, j, err := r.clientsFor(cfg)
	if err != nil {
		return nil, err
	}

	exp := experiment.New(cfg.snapshot())
	trials := r.expand(cfg)
	exp.Records = make([]experiment.DecisionRecord, len(trials))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	run := &Run{
		exp:    exp,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  experiment.StatusRunning,
	}
	run.logf("run %s started: %d trials across %d models", exp.ShortID(), len(trials), len(cfg.Models))

	go r.execute(runCtx, run, cfg, trials, client, j)
	return run, nil
}

// clientsFor resolves the gateway and judge a run uses: the per-run
// factory when the config carries a key, the shared defaults otherwise.
func (r *Runner) clientsFor(cfg Config) (gateway.Client, judge.Judge, error) {
	if cfg.APIKey != "" {
		if r.newClients == nil {
			return nil, nil, configErr("api_key", "this runner does not accept per-run credentials")
		}
		client, j, err := r.newClients(cfg.APIKey)
		if err != nil {
			return nil, nil, &ConfigError{Field: "api_key", Err: err}
		}
		return client, j, nil
	}
	if r.client == nil || r.judge == nil {
		return nil, nil, configErr("api_key", "an API key is required for each run")
	}
	return r.client, r.judge, nil
}

// expand builds the full trial matrix in deterministic order: scenario,
// then role, then model, then iteration.
func (r *Runner) expand(cfg Config) []trial {
	var trials []trial
	i := 0
	for _, sid := range cfg.ScenarioIDs {
		scenario, _ := r.catalog.Scenario(sid)
		for _, rid := range cfg.RoleIDs {
			role, _ := r.catalog.Role(rid)
			for _, model := range cfg.Models {
				for iter := 1; iter <= cfg.Iterations; iter++ {
					trials = append(trials, trial{
						index:     i,
						scenario:  scenario,
						role:      role,
						model:     model,
						iteration: iter,
					})
					i++
				}
			}
		}
	}
	return trials
}

func (r *Runner) execute(ctx context.Context, run *Run, cfg Config, trials []trial, client gateway.Client, j judge.Judge) {
	defer close(run.done)
	log := clog.FromContext(ctx).With("run_id", run.exp.ShortID())

	var eg errgroup.Group
	eg.SetLimit(cfg.Workers)
	for _, t := range trials {
		eg.Go(func() error {
			rec := r.runTrial(ctx, cfg, t, client, j)
			run.record(t.index, rec)
			r.metrics.RecordTrial(ctx, t.model, string(rec.Status))
			run.logf("trial %d/%d %s: scenario=%s role=%s model=%s",
				run.doneCount(), len(trials), rec.Status, t.scenario.ID, t.role.ID, t.model)
			return nil
		})
	}
	// Workers never return errors; per-trial failures live on the records.
	_ = eg.Wait()

	run.exp.Finalize()
	path, err := r.store.Save(run.exp)

	run.mu.Lock()
	run.state = run.exp.Status
	run.path = path
	run.runErr = err
	run.mu.Unlock()

	if err != nil {
		log.With("error", err).Error("Failed to save experiment")
		run.logf("run %s finished (%s) but saving failed: %v", run.exp.ShortID(), run.exp.Status, err)
		return
	}
	succeeded, failed, evalFailed, skipped := run.exp.Counts()
	log.With("status", run.exp.Status).
		With("succeeded", succeeded).
		With("failed", failed+evalFailed).
		With("skipped", skipped).
		With("path", path).
		Info("Run finished")
	run.logf("run %s finished: %s, saved to %s", run.exp.ShortID(), run.exp.Status, path)
}

// runTrial performs one trial end to end. Every outcome, including
// failure, produces a record; errors never propagate past this function.
func (r *Runner) runTrial(ctx context.Context, cfg Config, t trial, client gateway.Client, j judge.Judge) experiment.DecisionRecord {
	rec := experiment.DecisionRecord{
		ScenarioID: t.scenario.ID,
		RoleID:     t.role.ID,
		Model:      t.model,
		Iteration:  t.iteration,
		Timestamp:  time.Now().UTC(),
	}

	// A cancelled run skips everything not yet dispatched.
	if ctx.Err() != nil {
		rec.Status = experiment.RecordSkipped
		rec.FailureReason = "run cancelled before dispatch"
		return rec
	}

	promptText, err := catalog.RenderPrompt(t.role, t.scenario)
	if err != nil {
		rec.Status = experiment.RecordFailed
		rec.FailureReason = err.Error()
		return rec
	}
	rec.Prompt = promptText

	completion, err := client.Complete(ctx, gateway.Request{
		Model:       t.model,
		Prompt:      promptText,
		Temperature: *cfg.Temperature,
		MaxTokens:   int64(cfg.MaxTokens),
	})
	if err != nil {
		if ctx.Err() != nil {
			rec.Status = experiment.RecordSkipped
			rec.FailureReason = "run cancelled"
		} else {
			rec.Status = experiment.RecordFailed
			rec.FailureReason = err.Error()
		}
		return rec
	}
	rec.Response = completion.Text
	rec.Latency = completion.Latency

	if choice, ok := parse.ExtractChoice(completion.Text); ok {
		rec.Decision = choice
	}

	score, err := j.Evaluate(ctx, judge.Request{
		ScenarioName:        t.scenario.Name,
		ScenarioDescription: t.scenario.Description,
		RoleName:            t.role.Name,
		Response:            completion.Text,
	})
	if err != nil {
		rec.Status = experiment.RecordEvaluationFailed
		rec.FailureReason = err.Error()
		var evalErr *judge.EvaluationError
		if errors.As(err, &evalErr) {
			rec.RawEvaluation = evalErr.RawText
		}
		return rec
	}

	rec.Evaluation = score
	rec.Status = experiment.RecordSucceeded
	return rec
}

// record stores a finished trial's outcome at its matrix position.
func (run *Run) record(index int, rec experiment.DecisionRecord) {
	run.mu.Lock()
	defer run.mu.Unlock()
	run.exp.Records[index] = rec
	run.nDone++
}

func (run *Run) doneCount() int {
	run.mu.Lock()
	defer run.mu.Unlock()
	return run.nDone
}

func (run *Run) logf(format string, args ...any) {
	run.mu.Lock()
	defer run.mu.Unlock()
	run.events = append(run.events, Event{
		Time:    time.Now().UTC(),
		Message: fmt.Sprintf(format, args...),
	})
}

// RunID returns the run's identifier.
func (run *Run) RunID() string { return run.exp.RunID }

// Status reports current progress. Safe to call while the run is active.
func (run *Run) Status() Status {
	run.mu.Lock()
	defer run.mu.Unlock()

	st := Status{
		RunID: run.exp.RunID,
		State: run.state,
		Total: len(run.exp.Records),
		Done:  run.nDone,
		Path:  run.path,
	}
	for _, rec := range run.exp.Records {
		switch rec.Status {
		case experiment.RecordSucceeded:
			st.Succeeded++
		case experiment.RecordFailed, experiment.RecordEvaluationFailed:
			st.Failed++
		case experiment.RecordSkipped:
			st.Skipped++
		}
	}
	return st
}

// Events returns a copy of the progress log.
func (run *Run) Events() []Event {
	run.mu.Lock()
	defer run.mu.Unlock()
	out := make([]Event, len(run.events))
	copy(out, run.events)
	return out
}

// Cancel stops dispatching new trials. Trials already in flight finish
// or fail; undispatched trials are recorded as skipped, and the partial
// experiment is still finalized and saved.
func (run *Run) Cancel() {
	run.logf("cancellation requested")
	run.cancel()
}

// Wait blocks until the run finishes or ctx is done, returning the final
// experiment and any save error.
func (run *Run) Wait(ctx context.Context) (*experiment.Experiment, error) {
	select {
	case <-run.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	run.mu.Lock()
	defer run.mu.Unlock()
	return run.exp, run.runErr
}
