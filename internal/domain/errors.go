package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals an unknown property, location or sector.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument signals an out-of-range request parameter.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInference signals a failed price prediction.
	ErrInference = errors.New("inference failed")
	// ErrNotImplemented signals a feature whose artifact was not loaded.
	ErrNotImplemented = errors.New("not implemented")
	// ErrInvalidArtifact signals a malformed precomputed artifact.
	ErrInvalidArtifact = errors.New("invalid artifact")
)

// NotFoundError wraps ErrNotFound with the kind of key and the key itself.
type NotFoundError struct {
	Kind string // property, location, sector
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Kind, e.Key, ErrNotFound.Error())
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound creates a not found error for the given key.
func NewNotFound(kind, key string) error {
	return &NotFoundError{Kind: kind, Key: key}
}

// InferenceError wraps an underlying prediction failure.
// errors.Is(err, ErrInference) holds, and errors.As reaches the cause.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	if e.Err == nil {
		return ErrInference.Error()
	}
	return ErrInference.Error() + ": " + e.Err.Error()
}

func (e *InferenceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInference}
	}
	return []error{ErrInference, e.Err}
}

// NewInference wraps err as an inference failure.
func NewInference(err error) error {
	return &InferenceError{Err: err}
}

// InvalidArgument formats an ErrInvalidArgument with details.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
