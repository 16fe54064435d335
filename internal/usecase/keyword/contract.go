package keyword

import (
	"context"

	domdoc "github.com/corpora-lab/qadex/internal/domain/document"
	"github.com/corpora-lab/qadex/internal/domain/search/filter"
)

// Repository defines the storage contract for keyword search.
type Repository interface {
	Find(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error)
}
