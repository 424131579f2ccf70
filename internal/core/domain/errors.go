package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Returned when a named index store has never been built.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingCredential indicates a required API key is not configured.
	// Surfaces as a configuration error rather than an upstream failure.
	ErrMissingCredential = errors.New("credential not configured")

	// ErrUpstream indicates a remote model call failed (transport or non-2xx status).
	ErrUpstream = errors.New("upstream call failed")

	// ErrParse indicates model output could not be parsed into a structured value.
	ErrParse = errors.New("parse failed")

	// ErrDimensionMismatch indicates a vector does not match the store dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Planning and answer synthesis are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Index builds and semantic search are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrBuildInProgress indicates a build for the same store is already running
	// and the caller asked not to wait.
	ErrBuildInProgress = errors.New("build in progress")
)
