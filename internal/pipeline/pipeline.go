// Package pipeline sequences dependent data fetches. Multi-step loads
// (journeys -> learners -> programs -> submissions) run strictly in
// dependency order; a failing stage aborts the rest of the chain and its
// error names the stage that produced it.
package pipeline

import (
	"context"
	"fmt"
)

// Stage is one step of a dependent chain: input to output or error.
type Stage[In, Out any] struct {
	Name string
	Run  func(ctx context.Context, in In) (Out, error)
}

// StageError wraps a stage failure with the stage's name. The underlying
// message is surfaced unchanged.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Exec runs a single stage, tagging any failure with the stage name.
func Exec[In, Out any](ctx context.Context, stage Stage[In, Out], in In) (Out, error) {
	out, err := stage.Run(ctx, in)
	if err != nil {
		var zero Out
		if _, already := err.(*StageError); already {
			return zero, err
		}
		return zero, &StageError{Stage: stage.Name, Err: err}
	}
	return out, nil
}

// Then composes two stages into one; the second never runs when the first
// fails.
func Then[A, B, C any](first Stage[A, B], next Stage[B, C]) Stage[A, C] {
	return Stage[A, C]{
		Name: fmt.Sprintf("%s>%s", first.Name, next.Name),
		Run: func(ctx context.Context, in A) (C, error) {
			mid, err := Exec(ctx, first, in)
			if err != nil {
				var zero C
				return zero, err
			}
			return Exec(ctx, next, mid)
		},
	}
}

// FailedStage reports which stage an error came from, if any.
func FailedStage(err error) string {
	if stageErr, ok := err.(*StageError); ok {
		return stageErr.Stage
	}
	return ""
}
