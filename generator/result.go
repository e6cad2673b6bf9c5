package generator

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a generation stage fell back.
type FailureKind string

const (
	FailureCall      FailureKind = "call"      // transport error, timeout, non-2xx
	FailureMalformed FailureKind = "malformed" // structured output did not parse
	FailureEmpty     FailureKind = "empty"     // provider answered with nothing usable
)

// ErrEmptyResponse is returned by providers that answered with no content.
var ErrEmptyResponse = errors.New("empty response")

// Failure records a degraded stage.
type Failure struct {
	Stage string
	Kind  FailureKind
	Err   error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Stage, f.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", f.Stage, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Result carries a stage value and, when the value is a fallback, why.
type Result[T any] struct {
	Value   T
	Failure *Failure
}

// OK wraps a value produced on the happy path.
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Degraded wraps a fallback value with its cause.
func Degraded[T any](v T, stage string, kind FailureKind, err error) Result[T] {
	return Result[T]{Value: v, Failure: &Failure{Stage: stage, Kind: kind, Err: err}}
}

// Failed reports whether the value is a fallback.
func (r Result[T]) Failed() bool {
	return r.Failure != nil
}

func callFailureKind(err error) FailureKind {
	if errors.Is(err, ErrEmptyResponse) {
		return FailureEmpty
	}
	return FailureCall
}
