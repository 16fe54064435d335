package similarity

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/corpora-lab/qadex/internal/domain"
	domdoc "github.com/corpora-lab/qadex/internal/domain/document"
	"github.com/corpora-lab/qadex/internal/domain/search/filter"
	"github.com/corpora-lab/qadex/internal/domain/search/result"
)

// mockSearchRepo implements SearchRepository for tests.
type mockSearchRepo struct {
	findByVectorFn func(ctx context.Context, vector []float32, flt filter.Filter, k int) ([]result.Similar, error)
}

func (m *mockSearchRepo) FindByVector(
	ctx context.Context, vector []float32, flt filter.Filter, k int,
) ([]result.Similar, error) {
	if m.findByVectorFn != nil {
		return m.findByVectorFn(ctx, vector, flt, k)
	}
	return nil, nil
}

// mockDocs implements DocumentReader for tests.
type mockDocs struct {
	getFn    func(ctx context.Context, id string) (domdoc.Document, error)
	sampleFn func(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error)
}

func (m *mockDocs) Get(ctx context.Context, id string) (domdoc.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domdoc.Document{}, domain.ErrNotFound
}

func (m *mockDocs) Sample(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error) {
	if m.sampleFn != nil {
		return m.sampleFn(ctx, flt, limit)
	}
	return nil, nil
}

// mockEmbedder returns a fixed vector for every text unless overridden.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	vec     []float32
	err     error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 1}, nil
}

func newTestService(t *testing.T, search *mockSearchRepo, docs *mockDocs, embed Embedder) *Service {
	t.Helper()
	return New(search, docs, embed, Config{ScanWorkers: 2}, zap.NewNop())
}

func docWithVector(id, question, answer string, vec []float32) domdoc.Document {
	return domdoc.Reconstruct(id, question, answer, "", "", vec, time.Time{}, time.Time{})
}

func similarHit(id, question, answer string, similarity float64) result.Similar {
	return result.NewSimilar(docWithVector(id, question, answer, nil), similarity)
}
