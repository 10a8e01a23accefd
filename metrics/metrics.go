/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics provides OpenTelemetry counters for experiment execution:
// token usage per model, gateway retries, and trial outcomes.
package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Experiment holds the counters recorded while running trials. A single
// meter is shared across gateways and runners, with the model id serving as
// a dimension to differentiate providers.
type Experiment struct {
	meter            metric.Meter
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	retries          metric.Int64Counter
	trials           metric.Int64Counter
}

// counter creates an Int64Counter with graceful degradation: if creation
// fails, a warning is logged and a no-op counter is used so experiment
// execution never depends on the metrics pipeline.
func counter(meter metric.Meter, name, desc, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit))
	if err != nil {
		slog.Warn("Failed to create counter, metric will be disabled", "counter", name, "error", err)
		return noop.Int64Counter{}
	}
	return c
}

// NewExperiment creates the experiment metrics on the named meter.
func NewExperiment(meterName string) *Experiment {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))
	return &Experiment{
		meter:            meter,
		promptTokens:     counter(meter, "roleframing.token.prompt", "The number of prompt tokens used", "{tokens}"),
		completionTokens: counter(meter, "roleframing.token.completion", "The number of completion tokens used", "{tokens}"),
		retries:          counter(meter, "roleframing.gateway.retries", "The number of retried gateway calls", "{calls}"),
		trials:           counter(meter, "roleframing.trials", "The number of completed trials by outcome", "{trials}"),
	}
}

// RecordTokens records prompt and completion token usage for a model.
func (m *Experiment) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64) {
	attrs := metric.WithAttributes(attribute.String("model", model))
	m.promptTokens.Add(ctx, promptTokens, attrs)
	m.completionTokens.Add(ctx, completionTokens, attrs)
}

// RecordRetries records how many extra attempts a gateway call needed.
func (m *Experiment) RecordRetries(ctx context.Context, model string, retries int64) {
	if retries <= 0 {
		return
	}
	m.retries.Add(ctx, retries, metric.WithAttributes(attribute.String("model", model)))
}

// RecordTrial records one finished trial with its outcome and model.
func (m *Experiment) RecordTrial(ctx context.Context, model, outcome string) {
	m.trials.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("outcome", outcome),
	))
}
