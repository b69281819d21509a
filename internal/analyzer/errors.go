package analyzer

import "fmt"

type ErrorKind int

const (
	// EvaluationFailed: the completion call failed or its output could
	// not be parsed into QA items. Non-fatal to the rest of the
	// pipeline; the caller surfaces it and moves on.
	EvaluationFailed ErrorKind = iota + 1
)

func (k ErrorKind) String() string {
	if k == EvaluationFailed {
		return "evaluation_failed"
	}
	return "unknown"
}

type Error struct {
	Kind  ErrorKind
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("analyzer %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("analyzer %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }
