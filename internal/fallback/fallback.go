// Package fallback runs ordered lists of attempts: primary first, then each
// alternate, stopping at the first result that passes a success predicate.
package fallback

import (
	"context"
	"errors"
	"fmt"
)

// ErrExhausted is returned when no attempt produced an accepted result.
var ErrExhausted = errors.New("fallback: all attempts exhausted")

// Attempt is one way of producing a value.
type Attempt[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Chain tries attempts in order. Accept decides whether a result that came
// back without error is good enough to stop; nil accepts everything.
type Chain[T any] struct {
	Attempts []Attempt[T]
	Accept   func(T) bool
	// OnFailure observes every rejected attempt; optional.
	OnFailure func(name string, err error)
}

// Then appends an attempt and returns the chain for chaining.
func (c *Chain[T]) Then(name string, run func(ctx context.Context) (T, error)) *Chain[T] {
	c.Attempts = append(c.Attempts, Attempt[T]{Name: name, Run: run})
	return c
}

// Do returns the first accepted result together with the name of the attempt
// that produced it. When nothing is accepted it returns the zero value and an
// error wrapping ErrExhausted and the last failure.
func (c *Chain[T]) Do(ctx context.Context) (T, string, error) {
	var (
		zero    T
		lastErr error
	)
	for _, a := range c.Attempts {
		if err := ctx.Err(); err != nil {
			return zero, "", fmt.Errorf("%w: %w", ErrExhausted, err)
		}
		v, err := a.Run(ctx)
		if err == nil && (c.Accept == nil || c.Accept(v)) {
			return v, a.Name, nil
		}
		if err == nil {
			err = fmt.Errorf("%s: result rejected", a.Name)
		}
		lastErr = err
		if c.OnFailure != nil {
			c.OnFailure(a.Name, err)
		}
	}
	if lastErr == nil {
		return zero, "", ErrExhausted
	}
	return zero, "", fmt.Errorf("%w: %w", ErrExhausted, lastErr)
}

// NonEmptyString accepts strings with content.
func NonEmptyString(s string) bool { return s != "" }

// NonEmptySlice accepts slices with at least one element.
func NonEmptySlice[E any](s []E) bool { return len(s) > 0 }
