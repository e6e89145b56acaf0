package service

import (
	"context"

	"tutor-registry/internal/domain/registry"
	"tutor-registry/pkg/logger"
)

// The store commits every call independently, so multi-step writes are run
// as an ordered list of steps, each with an optional compensating action.
// When a step fails, the compensations of the steps that already succeeded
// are executed in reverse order to remove the partial state.

type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

type saga struct {
	steps []sagaStep
}

func (s *saga) add(step sagaStep) {
	s.steps = append(s.steps, step)
}

// execute runs the steps in order. On failure it unwinds and returns the
// step's error, or a *registry.RollbackError when a compensation also
// fails and partial state is left behind.
func (s *saga) execute(ctx context.Context) error {
	for i, step := range s.steps {
		if err := step.run(ctx); err != nil {
			if compErr := s.unwind(ctx, i-1); compErr != nil {
				return &registry.RollbackError{
					Op:              step.name,
					Cause:           err,
					CompensationErr: compErr,
				}
			}
			return err
		}
	}
	return nil
}

func (s *saga) unwind(ctx context.Context, from int) error {
	for i := from; i >= 0; i-- {
		step := s.steps[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(ctx); err != nil {
			logger.Error("Compensation for step %q failed: %v", step.name, err)
			return err
		}
		logger.Info("Compensated step %q", step.name)
	}
	return nil
}
