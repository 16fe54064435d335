// Package search performs vector similarity lookups against the QA index.
package search

import (
	"context"
	"errors"

	"github.com/corpora-lab/qadex/internal/db"
	"github.com/corpora-lab/qadex/internal/domain"
	repodoc "github.com/corpora-lab/qadex/internal/repository/document"

	"github.com/corpora-lab/qadex/internal/domain/search/filter"
	"github.com/corpora-lab/qadex/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// returnFields are the hash fields materialized for KNN hits. The vector
// blob stays in Redis; callers re-embed candidate texts when they need
// per-field similarity.
var returnFields = []string{
	"id", "question", "answer", "category", "source",
	"created_at", "last_modified",
}

// Repo implements the vector search side of the similarity usecases.
type Repo struct {
	store store
}

func New(s store) *Repo {
	return &Repo{store: s}
}

// FindByVector runs a KNN query and returns candidates ordered by
// similarity descending, carrying the store-native cosine similarity.
func (r *Repo) FindByVector(ctx context.Context, vector []float32, flt filter.Filter, k int) ([]result.Similar, error) {
	q := &db.KNNQuery{
		IndexName:    repodoc.IndexName,
		Filter:       flt,
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, mapErr(err)
	}
	return parseKNNResults(sr), nil
}

// parseKNNResults converts db.SearchResult into []result.Similar.
// Entries arrive sorted by vector score, which the db layer has already
// converted into a similarity.
func parseKNNResults(sr *db.SearchResult) []result.Similar {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	out := make([]result.Similar, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		doc := repodoc.ParseSearchEntry(entry.Key, entry.Fields)
		out = append(out, result.NewSimilar(doc, entry.Score))
	}
	return out
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrIndexNotFound):
		return domain.ErrNotFound
	case errors.Is(err, db.ErrUnavailable):
		return domain.ErrNotConnected
	default:
		return err
	}
}
