package document

import (
	"context"

	"github.com/corpora-lab/qadex/internal/domain"
	domdoc "github.com/corpora-lab/qadex/internal/domain/document"
	"github.com/corpora-lab/qadex/internal/domain/document/patch"
	"github.com/corpora-lab/qadex/internal/domain/search/filter"
)

// Repository defines the storage contract for document maintenance.
type Repository interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
	Find(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error)
	Update(ctx context.Context, id string, p patch.Patch, newVector []float32) error
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, flt filter.Filter) (int, error)
	Categories(ctx context.Context) ([]string, error)
	Sources(ctx context.Context) ([]string, error)
}

// Embedder vectorizes text for embedding regeneration on update.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
