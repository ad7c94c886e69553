// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jandreu1/azure-pipelines-agent/internal/config"
	"github.com/jandreu1/azure-pipelines-agent/pkg/pipeline"
)

type (
	// ExecutionContext is the collaborator surface a step executes
	// against: cancellation, the job's variable store, the prepend-path
	// sequence, the loaded configuration, and the warning sink. One
	// context serves one job; every step of the job shares it.
	ExecutionContext struct {
		ctx  context.Context
		vars *pipeline.VariableStore
		cfg  *config.Config

		prependPath []string

		continueAfterCancelKill bool

		mu       sync.Mutex
		warnings []string
		sink     func(string)
	}

	// ContextOption configures an ExecutionContext.
	ContextOption func(*ExecutionContext)
)

// WithWarningSink mirrors every recorded warning into sink. The runner
// points this at its log so warnings surface as they happen instead of
// only in the post-run summary.
func WithWarningSink(sink func(string)) ContextOption {
	return func(c *ExecutionContext) { c.sink = sink }
}

// WithPrependPath queues directories for PATH prepending, in
// declaration order.
func WithPrependPath(paths []string) ContextOption {
	return func(c *ExecutionContext) { c.prependPath = paths }
}

// NewExecutionContext builds the context a job's steps run against. A
// nil ctx or vars is replaced with a usable empty value; cfg may stay
// nil when no configuration was loaded. Boolean worker options are
// resolved here, once, so every consumer of the context sees the same
// decision.
func NewExecutionContext(ctx context.Context, vars *pipeline.VariableStore, cfg *config.Config, opts ...ContextOption) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if vars == nil {
		vars = pipeline.NewVariableStore()
	}
	ec := &ExecutionContext{
		ctx:  ctx,
		vars: vars,
		cfg:  cfg,
	}
	for _, opt := range opts {
		opt(ec)
	}
	ec.continueAfterCancelKill = config.ContinueAfterCancelKillOption.Resolve(vars, os.Getenv, cfg)
	return ec
}

// Context returns the cancellation context for the step.
func (c *ExecutionContext) Context() context.Context { return c.ctx }

// Variables returns the job-scope variable store.
func (c *ExecutionContext) Variables() *pipeline.VariableStore { return c.vars }

// Config returns the loaded worker configuration, or nil when none was
// loaded.
func (c *ExecutionContext) Config() *config.Config { return c.cfg }

// PrependPath returns a copy of the directories queued for PATH
// prepending, in declaration order.
func (c *ExecutionContext) PrependPath() []string {
	out := make([]string, len(c.prependPath))
	copy(out, c.prependPath)
	return out
}

// ContinueAfterCancelKillAttempt reports whether a cancellation
// sequence keeps going after the process-tree kill attempt, letting
// trailing steps run, instead of treating an unkilled tree as fatal.
func (c *ExecutionContext) ContinueAfterCancelKillAttempt() bool {
	return c.continueAfterCancelKill
}

// Warning records a non-fatal, user-visible condition. Safe for
// concurrent use.
func (c *ExecutionContext) Warning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.mu.Lock()
	c.warnings = append(c.warnings, msg)
	sink := c.sink
	c.mu.Unlock()
	if sink != nil {
		sink(msg)
	}
}

// Warnings returns a copy of the warnings recorded so far, in order.
func (c *ExecutionContext) Warnings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.warnings))
	copy(out, c.warnings)
	return out
}
