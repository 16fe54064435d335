// Package document implements corpus maintenance: reads, updates with
// embedding regeneration, deletes and corpus statistics.
package document

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	domdoc "github.com/corpora-lab/qadex/internal/domain/document"
	"github.com/corpora-lab/qadex/internal/domain/document/patch"
	"github.com/corpora-lab/qadex/internal/domain/search/filter"
)

// Count cap. Counting is linear in matched documents, so totals at or
// above CountCap report the CountMany sentinel instead of an exact value.
const (
	CountCap  = 1000
	CountMany = -1
)

// Service maintains the QA corpus.
type Service struct {
	repo   Repository
	embed  Embedder
	logger *zap.Logger
}

// New creates a document maintenance service. embed may be nil when no
// embedding provider is configured; updates then skip regeneration.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, logger: logger.Named("document")}
}

// Get fetches a single document.
func (s *Service) Get(ctx context.Context, id string) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns documents matching the filter, without vectors.
func (s *Service) List(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error) {
	docs, err := s.repo.Find(ctx, flt, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Count reports the number of matching documents, or CountMany when the
// total reaches the cap.
func (s *Service) Count(ctx context.Context, flt filter.Filter) (int, error) {
	n, err := s.repo.Count(ctx, flt)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	if n >= CountCap {
		return CountMany, nil
	}
	return n, nil
}

// Update applies a partial patch. When the patch touches question or
// answer text, the embedding is regenerated from the merged text; an
// embedding failure is logged and the text fields are still written, so
// the document's vector goes stale rather than the update failing.
func (s *Service) Update(ctx context.Context, id string, p patch.Patch) (domdoc.Document, error) {
	var newVector []float32

	if p.TouchesEmbedding() && s.embed != nil {
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return domdoc.Document{}, fmt.Errorf("get document: %w", err)
		}
		merged := mergePatch(&current, p)

		embRes, err := s.embed.Embed(ctx, merged.EmbeddingText())
		if err != nil {
			s.logger.Warn("Embedding regeneration failed, updating text only",
				zap.String("id", id), zap.Error(err))
		} else {
			newVector = embRes.Embedding
		}
	}

	if err := s.repo.Update(ctx, id, p, newVector); err != nil {
		return domdoc.Document{}, fmt.Errorf("update document: %w", err)
	}

	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("reload document: %w", err)
	}
	return doc, nil
}

// Delete removes a document. Returns false when it did not exist.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return ok, nil
}

// Categories returns the distinct category values, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	vals, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	sort.Strings(vals)
	return vals, nil
}

// Sources returns the distinct source values, sorted.
func (s *Service) Sources(ctx context.Context) ([]string, error) {
	vals, err := s.repo.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("distinct sources: %w", err)
	}
	sort.Strings(vals)
	return vals, nil
}

// mergePatch overlays patched text fields onto the stored document so
// EmbeddingText sees the post-update content.
func mergePatch(current *domdoc.Document, p patch.Patch) domdoc.Document {
	question := current.Question()
	answer := current.Answer()
	if q := p.Question(); q != nil {
		question = *q
	}
	if a := p.Answer(); a != nil {
		answer = *a
	}
	return domdoc.Reconstruct(
		current.ID(), question, answer,
		current.Category(), current.Source(),
		nil, current.CreatedAt(), current.LastModified(),
	)
}
