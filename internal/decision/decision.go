package decision

import (
	"context"
	"errors"
)

var (
	// ErrNoPending is returned by Resume when no request is outstanding.
	ErrNoPending = errors.New("decision: no pending request")
	// ErrPending is returned when an operation needs the outstanding request
	// answered first.
	ErrPending = errors.New("decision: request pending")
)

// Outcome is the result of one Step: either a pending request or a finished
// result, never both.
type Outcome[Q, R any] struct {
	Request Q
	Result  R
	Done    bool
}

// Pending wraps a request in an Outcome.
func Pending[Q, R any](req Q) Outcome[Q, R] {
	return Outcome[Q, R]{Request: req}
}

// Finished wraps a result in an Outcome.
func Finished[Q, R any](result R) Outcome[Q, R] {
	return Outcome[Q, R]{Result: result, Done: true}
}

// Engine is a resumable scan. Step runs until the scan finishes or needs an
// answer. Stepping again while a request is pending returns the same request;
// stepping after completion returns the same result. Resume delivers exactly
// one answer for the outstanding request.
type Engine[Q, A, R any] interface {
	Step(ctx context.Context) (Outcome[Q, R], error)
	Resume(answer A) error
}

// Decider answers one request, typically by prompting a human.
type Decider[Q, A any] func(ctx context.Context, req Q) (A, error)

// Drive steps engine to completion, answering every request with decide.
// Context cancellation is checked between steps.
func Drive[Q, A, R any](ctx context.Context, engine Engine[Q, A, R], decide Decider[Q, A]) (R, error) {
	var zero R
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		outcome, err := engine.Step(ctx)
		if err != nil {
			return zero, err
		}
		if outcome.Done {
			return outcome.Result, nil
		}
		answer, err := decide(ctx, outcome.Request)
		if err != nil {
			return zero, err
		}
		if err := engine.Resume(answer); err != nil {
			return zero, err
		}
	}
}

// Gate tracks the single outstanding request of an engine.
type Gate[Q any] struct {
	req     Q
	pending bool
}

// Open records req as outstanding. It fails when one is already open.
func (g *Gate[Q]) Open(req Q) error {
	if g.pending {
		return ErrPending
	}
	g.req = req
	g.pending = true
	return nil
}

// Pending returns the outstanding request, if any.
func (g *Gate[Q]) Pending() (Q, bool) {
	return g.req, g.pending
}

// Close clears the outstanding request and returns it.
func (g *Gate[Q]) Close() (Q, error) {
	var zero Q
	if !g.pending {
		return zero, ErrNoPending
	}
	req := g.req
	g.req = zero
	g.pending = false
	return req, nil
}
