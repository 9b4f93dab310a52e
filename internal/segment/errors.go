package segment

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures.
type ErrorKind uint8

const (
	InsufficientFeatures ErrorKind = iota + 1
	InvalidSelection
	DegenerateFeature
	InvalidK
	DegenerateAssignment
)

func (k ErrorKind) String() string {
	switch k {
	case InsufficientFeatures:
		return "insufficient features"
	case InvalidSelection:
		return "invalid selection"
	case DegenerateFeature:
		return "degenerate feature"
	case InvalidK:
		return "invalid k"
	case DegenerateAssignment:
		return "degenerate assignment"
	default:
		return "unknown"
	}
}

// Pipeline stage names, used in errors, logs and metrics.
const (
	StageSelect      = "select"
	StageImpute      = "impute"
	StageStandardize = "standardize"
	StageElbow       = "elbow"
	StageCluster     = "cluster"
	StageValidate    = "validate"
	StageProject     = "project"
	StageSummarize   = "summarize"
)

// Error is returned by every stage of the pipeline. Msg reads as an instruction
// to the analyst; Err holds an optional underlying cause.
type Error struct {
	Kind  ErrorKind
	Stage string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Stage != "" {
		msg = e.Stage + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of stage or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInsufficientFeatures = &Error{Kind: InsufficientFeatures}
	ErrInvalidSelection     = &Error{Kind: InvalidSelection}
	ErrDegenerateFeature    = &Error{Kind: DegenerateFeature}
	ErrInvalidK             = &Error{Kind: InvalidK}
	ErrDegenerateAssignment = &Error{Kind: DegenerateAssignment}
)

func newError(kind ErrorKind, stage, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Stage: stage, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
