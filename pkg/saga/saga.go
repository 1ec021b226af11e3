// Package saga runs a sequence of steps and undoes the completed ones, in
// reverse order, when a later step fails.
package saga

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Step is a unit of work paired with the action that undoes it.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Func adapts a pair of closures to Step. A nil UndoFn makes compensation
// a no-op.
type Func struct {
	StepName string
	DoFn     func(ctx context.Context) error
	UndoFn   func(ctx context.Context) error
}

func (f Func) Name() string { return f.StepName }

func (f Func) Execute(ctx context.Context) error { return f.DoFn(ctx) }

func (f Func) Compensate(ctx context.Context) error {
	if f.UndoFn == nil {
		return nil
	}
	return f.UndoFn(ctx)
}

// CompensationError is returned when the failing step's error was followed
// by at least one failed compensation. Cause is the original step error.
type CompensationError struct {
	Cause  error
	Failed []error
}

func (e *CompensationError) Error() string {
	return e.Cause.Error() + " (rollback incomplete: " + errors.Join(e.Failed...).Error() + ")"
}

func (e *CompensationError) Unwrap() error { return e.Cause }

type Orchestrator struct {
	steps  []Step
	logger *zap.Logger
}

func NewOrchestrator(logger *zap.Logger, steps ...Step) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{steps: steps, logger: logger}
}

func (o *Orchestrator) Add(step Step) {
	o.steps = append(o.steps, step)
}

// Run executes steps in order. On the first failure it compensates every
// step that already succeeded, newest first, and returns the step error.
// Compensation runs detached from the cancellation of ctx.
func (o *Orchestrator) Run(ctx context.Context) error {
	done := make([]Step, 0, len(o.steps))

	for _, step := range o.steps {
		o.logger.Debug("executing step", zap.String("step", step.Name()))
		if err := step.Execute(ctx); err != nil {
			o.logger.Info("step failed, rolling back",
				zap.String("step", step.Name()),
				zap.Int("completed", len(done)),
				zap.Error(err),
			)
			if failed := o.rollback(context.WithoutCancel(ctx), done); len(failed) > 0 {
				return &CompensationError{Cause: err, Failed: failed}
			}
			return err
		}
		done = append(done, step)
	}
	return nil
}

func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []error {
	var failed []error
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx); err != nil {
			o.logger.Error("compensation failed", zap.String("step", step.Name()), zap.Error(err))
			failed = append(failed, err)
		}
	}
	return failed
}
