package domain

import "errors"

var (
	// ErrNotConnected signals an unavailable document store.
	ErrNotConnected = errors.New("not connected to document store")
	// ErrNotFound signals a missing document.
	ErrNotFound = errors.New("document not found")
	// ErrMissingVector signals a similarity operation on a document without an embedding.
	ErrMissingVector = errors.New("document has no embedding vector")
	// ErrDimensionMismatch signals a vector dimension mismatch.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidThreshold signals a similarity threshold outside [0,1].
	ErrInvalidThreshold = errors.New("invalid similarity threshold")
	// ErrEmbedderUnavailable signals a missing or unconfigured embedding provider.
	ErrEmbedderUnavailable = errors.New("embedder unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
