package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRetrievalUnavailable indicates the vector store could not be queried.
	// It is distinct from an empty result: callers must not treat it as "no data".
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service failed or is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the language model call failed or is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrVectorStoreUnavailable indicates a write to the vector store failed.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrAlertUnavailable indicates the alert sink rejected an append.
	ErrAlertUnavailable = errors.New("alert sink unavailable")

	// ErrDimensionMismatch indicates a vector does not match the dimensionality
	// already stored for the same patient.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
