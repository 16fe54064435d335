package similarity

import (
	"context"

	"github.com/corpora-lab/qadex/internal/domain"
	domdoc "github.com/corpora-lab/qadex/internal/domain/document"
	"github.com/corpora-lab/qadex/internal/domain/search/filter"
	"github.com/corpora-lab/qadex/internal/domain/search/result"
)

// SearchRepository defines the vector search contract.
type SearchRepository interface {
	FindByVector(ctx context.Context, vector []float32, flt filter.Filter, k int) ([]result.Similar, error)
}

// DocumentReader reads documents for vector retrieval and corpus scans.
type DocumentReader interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
	Sample(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
