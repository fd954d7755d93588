package services

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrInvalidItem marks a feed item the scorer cannot score (negative counters, NaN distance)
var ErrInvalidItem = errors.New("invalid feed item")

// ErrInvalidDate is returned for digest dates that are not YYYY-MM-DD
var ErrInvalidDate = errors.New("invalid digest date")

// FetchError is a failed read from one content or interaction source
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result holds either the value of a source fetch or the reason it failed.
// Callers decide explicitly how to degrade with UnwrapOr.
type Result[T any] struct {
	Value T
	Err   *FetchError
}

// Ok wraps a successful fetch
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Failed wraps a failed fetch of source
func Failed[T any](source string, err error) Result[T] {
	return Result[T]{Err: &FetchError{Source: source, Err: err}}
}

// Failed reports whether the fetch failed
func (r Result[T]) Failed() bool {
	return r.Err != nil
}

// UnwrapOr returns the value, or fallback when the fetch failed
func (r Result[T]) UnwrapOr(fallback T) T {
	if r.Err != nil {
		return fallback
	}
	return r.Value
}

// recoverAsError turns a panic in stage into an error stored in *err
func recoverAsError(err *error, stage string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s panicked: %v\n%s", stage, r, debug.Stack())
	}
}
