/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package gatewaytest provides a scriptable in-memory gateway.Client for
// exercising the runner and evaluator without network access.
package gatewaytest

import (
	"context"
	"sync"

	"github.com/yw4343/llm-role-framing-and-decision-bias/gateway"
)

// Call records one Complete invocation.
type Call struct {
	Request gateway.Request
}

// Fake is a gateway.Client whose behavior is driven by a Respond function.
// The zero value echoes a fixed response for every request.
type Fake struct {
	// Respond produces the outcome for a request. When nil, every call
	// returns Completion{Text: "Choice: Option A"}.
	Respond func(req gateway.Request) (gateway.Completion, error)

	mu    sync.Mutex
	calls []Call
}

var _ gateway.Client = (*Fake)(nil)

// Complete implements gateway.Client.
func (f *Fake) Complete(ctx context.Context, req gateway.Request) (gateway.Completion, error) {
	if err := ctx.Err(); err != nil {
		return gateway.Completion{}, err
	}

	f.mu.Lock()
	f.calls = append(f.calls, Call{Request: req})
	f.mu.Unlock()

	if f.Respond == nil {
		return gateway.Completion{Text: "Choice: Option A"}, nil
	}
	return f.Respond(req)
}

// Calls returns a copy of all recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns the number of Complete invocations so far.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
