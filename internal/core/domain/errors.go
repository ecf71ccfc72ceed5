package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested document was not found
	ErrNotFound = errors.New("not found")

	// ErrUnknownSource indicates the source identifier is not registered
	ErrUnknownSource = errors.New("unknown source")

	// ErrUnknownMethod indicates the extraction method is not declared by the connector
	ErrUnknownMethod = errors.New("unknown extraction method")

	// ErrIndexUnavailable indicates the vector index backend or the embedding
	// model is non-functional; callers degrade instead of failing
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrEmbeddingUnavailable indicates no embedding service is configured
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrServiceUnavailable indicates an AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)

// MissingFieldError reports a raw record that cannot become a valid
// Document because a required canonical field could not be populated.
// The orchestrator logs and skips the record; the batch continues.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// IsMissingField reports whether err is a MissingFieldError.
func IsMissingField(err error) bool {
	var mf *MissingFieldError
	return errors.As(err, &mf)
}
