package chi

import (
	"context"
	"net/http"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/corpora-lab/qadex/internal/domain"
	domdoc "github.com/corpora-lab/qadex/internal/domain/document"
	"github.com/corpora-lab/qadex/internal/domain/document/patch"
	"github.com/corpora-lab/qadex/internal/domain/search/filter"
	"github.com/corpora-lab/qadex/internal/domain/search/result"
	documentuc "github.com/corpora-lab/qadex/internal/usecase/document"
	healthuc "github.com/corpora-lab/qadex/internal/usecase/health"
	keyworduc "github.com/corpora-lab/qadex/internal/usecase/keyword"
	similarityuc "github.com/corpora-lab/qadex/internal/usecase/similarity"
)

type fakeDocRepo struct {
	getFn        func(ctx context.Context, id string) (domdoc.Document, error)
	findFn       func(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error)
	updateFn     func(ctx context.Context, id string, p patch.Patch, newVector []float32) error
	deleteFn     func(ctx context.Context, id string) (bool, error)
	sampleFn     func(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error)
	countFn      func(ctx context.Context, flt filter.Filter) (int, error)
	categoriesFn func(ctx context.Context) ([]string, error)
	sourcesFn    func(ctx context.Context) ([]string, error)
}

func (f *fakeDocRepo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	return f.getFn(ctx, id)
}

func (f *fakeDocRepo) Find(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error) {
	return f.findFn(ctx, flt, limit)
}

func (f *fakeDocRepo) Update(ctx context.Context, id string, p patch.Patch, newVector []float32) error {
	return f.updateFn(ctx, id, p, newVector)
}

func (f *fakeDocRepo) Sample(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error) {
	return f.sampleFn(ctx, flt, limit)
}

func (f *fakeDocRepo) Delete(ctx context.Context, id string) (bool, error) {
	return f.deleteFn(ctx, id)
}

func (f *fakeDocRepo) Count(ctx context.Context, flt filter.Filter) (int, error) {
	return f.countFn(ctx, flt)
}

func (f *fakeDocRepo) Categories(ctx context.Context) ([]string, error) {
	return f.categoriesFn(ctx)
}

func (f *fakeDocRepo) Sources(ctx context.Context) ([]string, error) {
	return f.sourcesFn(ctx)
}

type fakeSearchRepo struct {
	findByVectorFn func(ctx context.Context, vector []float32, flt filter.Filter, k int) ([]result.Similar, error)
}

func (f *fakeSearchRepo) FindByVector(
	ctx context.Context, vector []float32, flt filter.Filter, k int,
) ([]result.Similar, error) {
	return f.findByVectorFn(ctx, vector, flt, k)
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: f.vec}, nil
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(context.Context) error { return f.err }

// serverFixture bundles the fakes behind a routed test server.
type serverFixture struct {
	docRepo    *fakeDocRepo
	searchRepo *fakeSearchRepo
	handler    http.Handler
}

func newTestServer(t *testing.T, docRepo *fakeDocRepo, searchRepo *fakeSearchRepo) *serverFixture {
	t.Helper()

	logger := zap.NewNop()
	embed := &fakeEmbedder{vec: []float32{0.1, 0.2, 0.3}}

	keywordSvc := keyworduc.New(docRepo, 0, 0, logger)
	similaritySvc := similarityuc.New(searchRepo, docRepo, embed, similarityuc.Config{ScanWorkers: 1}, logger)
	documentSvc := documentuc.New(docRepo, embed, logger)
	healthSvc := healthuc.New(&fakePinger{}, nil)

	srv := NewServer(keywordSvc, similaritySvc, documentSvc, healthSvc, logger)
	r := chirouter.NewRouter()
	srv.Routes(r)

	return &serverFixture{docRepo: docRepo, searchRepo: searchRepo, handler: r}
}

func testDocument(t *testing.T, id, question string) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New(id, question, "Answer text.", "replication", "manual")
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	return doc
}
