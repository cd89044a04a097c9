package manager

import (
	"errors"
	"net/http"
)

// modelNotFoundError is returned when a requested model id is not present in the registry.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string   { return "model not found: " + e.id }
func (e modelNotFoundError) StatusCode() int { return http.StatusNotFound }

// ErrModelNotFound returns an error when a requested model id is not present in the registry.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}

// loadError is a LoadFailure: the model could not be obtained. Terminal for the model id.
type loadError struct {
	modelID string
	cause   error
}

func (e *loadError) Error() string {
	return "load " + e.modelID + ": " + e.cause.Error()
}
func (e *loadError) Unwrap() error    { return e.cause }
func (e *loadError) StatusCode() int { return http.StatusServiceUnavailable }

// IsLoadFailure reports whether err is a model load failure.
func IsLoadFailure(err error) bool {
	var e *loadError
	return errors.As(err, &e)
}

// generationError is a GenerationFailure: the model call itself failed.
type generationError struct {
	modelID string
	cause   error
}

func (e *generationError) Error() string {
	return "generate " + e.modelID + ": " + e.cause.Error()
}
func (e *generationError) Unwrap() error    { return e.cause }
func (e *generationError) StatusCode() int { return http.StatusBadGateway }

// IsGenerationFailure reports whether err is a failure raised during inference.
func IsGenerationFailure(err error) bool {
	var e *generationError
	return errors.As(err, &e)
}

// ErrHandleUnavailable is returned by Generate when no loaded handle is supplied.
var ErrHandleUnavailable error = handleUnavailableError{}

type handleUnavailableError struct{}

func (handleUnavailableError) Error() string   { return "model handle unavailable" }
func (handleUnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

// IsHandleUnavailable reports whether err indicates a missing handle.
func IsHandleUnavailable(err error) bool {
	var e handleUnavailableError
	return errors.As(err, &e)
}

// invalidRequestError rejects a request before any model is consulted.
type invalidRequestError struct{ cause error }

func (e invalidRequestError) Error() string   { return "invalid request: " + e.cause.Error() }
func (e invalidRequestError) Unwrap() error    { return e.cause }
func (e invalidRequestError) StatusCode() int { return http.StatusBadRequest }

// ErrInvalidRequest wraps a validation failure.
func ErrInvalidRequest(cause error) error { return invalidRequestError{cause: cause} }

// IsInvalidRequest reports whether err indicates a rejected request.
func IsInvalidRequest(err error) bool {
	var e invalidRequestError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a missing external dependency (e.g., llama.cpp)
// so the HTTP layer can return 503 Service Unavailable instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string   { return e.msg }
func (e dependencyUnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}
