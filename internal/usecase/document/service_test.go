package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/corpora-lab/qadex/internal/domain"
	domdoc "github.com/corpora-lab/qadex/internal/domain/document"
	"github.com/corpora-lab/qadex/internal/domain/document/patch"
	"github.com/corpora-lab/qadex/internal/domain/search/filter"
)

// mockRepo implements Repository for tests.
type mockRepo struct {
	getFn        func(ctx context.Context, id string) (domdoc.Document, error)
	findFn       func(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error)
	updateFn     func(ctx context.Context, id string, p patch.Patch, newVector []float32) error
	deleteFn     func(ctx context.Context, id string) (bool, error)
	countFn      func(ctx context.Context, flt filter.Filter) (int, error)
	categoriesFn func(ctx context.Context) ([]string, error)
	sourcesFn    func(ctx context.Context) ([]string, error)
}

func (m *mockRepo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domdoc.Document{}, domain.ErrNotFound
}

func (m *mockRepo) Find(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error) {
	if m.findFn != nil {
		return m.findFn(ctx, flt, limit)
	}
	return nil, nil
}

func (m *mockRepo) Update(ctx context.Context, id string, p patch.Patch, newVector []float32) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, p, newVector)
	}
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return false, nil
}

func (m *mockRepo) Count(ctx context.Context, flt filter.Filter) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, flt)
	}
	return 0, nil
}

func (m *mockRepo) Categories(ctx context.Context) ([]string, error) {
	if m.categoriesFn != nil {
		return m.categoriesFn(ctx)
	}
	return nil, nil
}

func (m *mockRepo) Sources(ctx context.Context) ([]string, error) {
	if m.sourcesFn != nil {
		return m.sourcesFn(ctx)
	}
	return nil, nil
}

// mockEmbedder is a stub embedder.
type mockEmbedder struct {
	vec   []float32
	err   error
	texts []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 1}, nil
}

func storedDoc(id, question, answer string) domdoc.Document {
	return domdoc.Reconstruct(id, question, answer, "storage", "handbook",
		[]float32{0.9, 0.9}, time.Time{}, time.Time{})
}

// --- Count ---

func TestCount_Exact(t *testing.T) {
	repo := &mockRepo{countFn: func(_ context.Context, _ filter.Filter) (int, error) {
		return 37, nil
	}}
	svc := New(repo, nil, zap.NewNop())

	n, err := svc.Count(context.Background(), filter.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 37 {
		t.Fatalf("expected 37, got %d", n)
	}
}

func TestCount_CapReportsSentinel(t *testing.T) {
	repo := &mockRepo{countFn: func(_ context.Context, _ filter.Filter) (int, error) {
		return CountCap, nil
	}}
	svc := New(repo, nil, zap.NewNop())

	n, err := svc.Count(context.Background(), filter.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != CountMany {
		t.Fatalf("expected CountMany sentinel, got %d", n)
	}
}

// --- Update ---

func TestUpdate_RegeneratesEmbeddingFromMergedText(t *testing.T) {
	repo := &mockRepo{
		getFn: func(_ context.Context, id string) (domdoc.Document, error) {
			return storedDoc(id, "Old question?", "Old answer."), nil
		},
	}
	var gotVector []float32
	repo.updateFn = func(_ context.Context, _ string, _ patch.Patch, newVector []float32) error {
		gotVector = newVector
		return nil
	}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}
	svc := New(repo, embed, zap.NewNop())

	q := "New question?"
	p, _ := patch.New(&q, nil, nil, nil)

	_, err := svc.Update(context.Background(), "qa-1", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(embed.texts) != 1 || embed.texts[0] != "New question? Old answer." {
		t.Fatalf("expected merged embedding text, got %v", embed.texts)
	}
	if gotVector == nil || gotVector[0] != 0.1 {
		t.Fatalf("expected regenerated vector, got %v", gotVector)
	}
}

func TestUpdate_MetadataPatchSkipsEmbedding(t *testing.T) {
	repo := &mockRepo{
		getFn: func(_ context.Context, id string) (domdoc.Document, error) {
			return storedDoc(id, "q", "a"), nil
		},
	}
	var gotVector []float32
	repo.updateFn = func(_ context.Context, _ string, _ patch.Patch, newVector []float32) error {
		gotVector = newVector
		return nil
	}
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := New(repo, embed, zap.NewNop())

	cat := "networking"
	p, _ := patch.New(nil, nil, &cat, nil)

	_, err := svc.Update(context.Background(), "qa-1", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(embed.texts) != 0 {
		t.Fatalf("expected no embedding calls, got %v", embed.texts)
	}
	if gotVector != nil {
		t.Fatalf("expected nil vector for metadata patch, got %v", gotVector)
	}
}

func TestUpdate_EmbedFailureStillWritesText(t *testing.T) {
	repo := &mockRepo{
		getFn: func(_ context.Context, id string) (domdoc.Document, error) {
			return storedDoc(id, "q", "a"), nil
		},
	}
	var updated bool
	var gotVector []float32
	repo.updateFn = func(_ context.Context, _ string, _ patch.Patch, newVector []float32) error {
		updated = true
		gotVector = newVector
		return nil
	}
	embed := &mockEmbedder{err: errors.New("api down")}
	svc := New(repo, embed, zap.NewNop())

	q := "New question?"
	p, _ := patch.New(&q, nil, nil, nil)

	_, err := svc.Update(context.Background(), "qa-1", p)
	if err != nil {
		t.Fatalf("expected soft degradation, got error: %v", err)
	}
	if !updated {
		t.Fatal("expected the text update to go through")
	}
	if gotVector != nil {
		t.Fatalf("expected no vector after embed failure, got %v", gotVector)
	}
}

func TestUpdate_SentinelAnswerEmbedsQuestionOnly(t *testing.T) {
	repo := &mockRepo{
		getFn: func(_ context.Context, id string) (domdoc.Document, error) {
			return storedDoc(id, "What is RAID?", "unanswered"), nil
		},
	}
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := New(repo, embed, zap.NewNop())

	q := "What is RAID-5?"
	p, _ := patch.New(&q, nil, nil, nil)

	_, err := svc.Update(context.Background(), "qa-1", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(embed.texts) != 1 || embed.texts[0] != "What is RAID-5?" {
		t.Fatalf("expected question-only embedding text, got %v", embed.texts)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &mockRepo{getFn: func(_ context.Context, _ string) (domdoc.Document, error) {
		return domdoc.Document{}, domain.ErrNotFound
	}}
	svc := New(repo, &mockEmbedder{vec: []float32{0.1}}, zap.NewNop())

	q := "q"
	p, _ := patch.New(&q, nil, nil, nil)

	_, err := svc.Update(context.Background(), "ghost", p)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- Delete ---

func TestDelete_ReportsExistence(t *testing.T) {
	repo := &mockRepo{deleteFn: func(_ context.Context, id string) (bool, error) {
		return id == "qa-1", nil
	}}
	svc := New(repo, nil, zap.NewNop())

	ok, err := svc.Delete(context.Background(), "qa-1")
	if err != nil || !ok {
		t.Fatalf("expected deleted=true, got ok=%v err=%v", ok, err)
	}

	ok, err = svc.Delete(context.Background(), "ghost")
	if err != nil || ok {
		t.Fatalf("expected deleted=false, got ok=%v err=%v", ok, err)
	}
}

// --- Distinct values ---

func TestCategories_Sorted(t *testing.T) {
	repo := &mockRepo{categoriesFn: func(_ context.Context) ([]string, error) {
		return []string{"storage", "compute", "networking"}, nil
	}}
	svc := New(repo, nil, zap.NewNop())

	vals, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vals[0] != "compute" || vals[2] != "storage" {
		t.Fatalf("expected sorted values, got %v", vals)
	}
}
