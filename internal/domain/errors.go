package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid config")
	ErrExecution     = errors.New("execution error")

	ErrMalformedFrame = errors.New("malformed frame")
	ErrReadTimeout    = errors.New("read timeout")
	ErrConnection     = errors.New("connection error")
	ErrClassification = errors.New("classification error")
	ErrContract       = errors.New("contract violation")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindNotFound       ErrorKind = "not_found"
	KindInvalidConfig  ErrorKind = "invalid_config"
	KindExecution      ErrorKind = "execution"
	KindMalformedFrame ErrorKind = "malformed_frame"
	KindConnection     ErrorKind = "connection"
	KindClassification ErrorKind = "classification"
	KindContract       ErrorKind = "contract"
	KindDispatch       ErrorKind = "dispatch"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // Optional: relevant file path or device port
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind helps callers classify errors without depending on infra packages.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// IsFatal reports whether err must halt a monitoring run.
// Connection and contract failures cannot be recovered from inside the pipeline.
func IsFatal(err error) bool {
	return IsKind(err, KindConnection) || IsKind(err, KindContract)
}
