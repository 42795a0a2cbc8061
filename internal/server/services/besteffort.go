package services

import (
	"context"

	"github.com/dmitrijs2005/securestorage/internal/logging"
)

// StepOutcome records the result of a best-effort step. A failed step is
// reported and logged but never fails the operation that ran it.
type StepOutcome struct {
	Name string
	Err  error
}

// OK reports whether the step succeeded.
func (o StepOutcome) OK() bool { return o.Err == nil }

// bestEffort runs fn, logs a failure at Warn and returns the outcome.
func bestEffort(ctx context.Context, logger logging.Logger, name string, fn func(ctx context.Context) error) StepOutcome {
	err := fn(ctx)
	if err != nil {
		logger.Warn(ctx, "best-effort step failed", "step", name, "error", err)
	} else {
		logger.Debug(ctx, "best-effort step done", "step", name)
	}
	return StepOutcome{Name: name, Err: err}
}
