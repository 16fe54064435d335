package domain

import "context"

// KeyPrefix namespaces all qadex keys in the store.
const KeyPrefix = "qadex:"

// Embedder is the shared text vectorization contract between layers.
// Implementations must be deterministic for identical input within a session.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
