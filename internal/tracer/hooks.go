// SPDX-License-Identifier: MPL-2.0

package tracer

import (
	"context"

	"tracerun-cli/internal/engine"
)

type (
	// Hooks customizes the run lifecycle. Implementations replace the default
	// behavior entirely; a custom AfterRun that still wants output collection
	// calls Runner.CollectOutputs itself.
	Hooks interface {
		// BeforeRun fires after the request is assembled and before the
		// engine executes. Returning an error aborts the run.
		BeforeRun(ctx context.Context, r *Runner, req *engine.Request) error
		// AfterRun fires after a successful execution with the final
		// namespace. It does not fire when the script fails.
		AfterRun(ctx context.Context, r *Runner, ns engine.Namespace) error
	}

	// DefaultHooks collects declared outputs after each successful run and
	// does nothing before it.
	DefaultHooks struct{}
)

// BeforeRun implements Hooks.
func (DefaultHooks) BeforeRun(_ context.Context, _ *Runner, _ *engine.Request) error {
	return nil
}

// AfterRun implements Hooks.
func (DefaultHooks) AfterRun(_ context.Context, r *Runner, ns engine.Namespace) error {
	return r.CollectOutputs(ns)
}
