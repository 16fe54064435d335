// Package similarity implements embedding-based similarity search,
// pairwise comparison and duplicate scanning.
package similarity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/corpora-lab/qadex/internal/domain"
	domdoc "github.com/corpora-lab/qadex/internal/domain/document"
	"github.com/corpora-lab/qadex/internal/domain/search/request"
	"github.com/corpora-lab/qadex/internal/domain/search/result"
	"github.com/corpora-lab/qadex/internal/domain/vector"
	"github.com/corpora-lab/qadex/internal/metrics"
)

// Tuning defaults.
const (
	// DefaultVectorOversample widens KNN fetches so threshold filtering
	// still fills the requested limit.
	DefaultVectorOversample = 3
	// DefaultCompareWindow is the KNN window scanned when comparing two
	// specific documents.
	DefaultCompareWindow = 20
	// DefaultScanLimit bounds a full-corpus duplicate scan.
	DefaultScanLimit = 10000
	// DefaultScanWorkers is the duplicate-scan pool size.
	DefaultScanWorkers = 4
)

// Config carries the similarity service tuning knobs. Zero values fall
// back to the package defaults.
type Config struct {
	VectorOversample int
	CompareWindow    int
	ScanLimit        int
	ScanWorkers      int
}

// Service answers similarity queries over the QA corpus.
type Service struct {
	search SearchRepository
	docs   DocumentReader
	embed  Embedder

	oversample    int
	compareWindow int
	scanLimit     int
	scanWorkers   int

	logger *zap.Logger
}

// New creates a similarity service.
func New(search SearchRepository, docs DocumentReader, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	if cfg.VectorOversample <= 0 {
		cfg.VectorOversample = DefaultVectorOversample
	}
	if cfg.CompareWindow <= 0 {
		cfg.CompareWindow = DefaultCompareWindow
	}
	if cfg.ScanLimit <= 0 {
		cfg.ScanLimit = DefaultScanLimit
	}
	if cfg.ScanWorkers <= 0 {
		cfg.ScanWorkers = DefaultScanWorkers
	}
	return &Service{
		search:        search,
		docs:          docs,
		embed:         embed,
		oversample:    cfg.VectorOversample,
		compareWindow: cfg.CompareWindow,
		scanLimit:     cfg.ScanLimit,
		scanWorkers:   cfg.ScanWorkers,
		logger:        logger.Named("similarity"),
	}
}

// SearchByText embeds the query, over-fetches nearest neighbors, keeps
// candidates at or above the threshold, attaches question/answer
// sub-similarities and re-sorts by overall similarity.
func (s *Service) SearchByText(ctx context.Context, text string, req *request.Similarity) ([]result.Similar, error) {
	if s.embed == nil {
		return nil, domain.ErrEmbedderUnavailable
	}
	start := time.Now()

	embRes, err := s.embed.Embed(ctx, text)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("similarity_text", "error").Inc()
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	queryVec := embRes.Embedding

	k := req.Limit() * s.oversample
	candidates, err := s.search.FindByVector(ctx, queryVec, req.Filter(), k)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("similarity_text", "error").Inc()
		return nil, fmt.Errorf("knn search: %w", err)
	}

	survivors := make([]result.Similar, 0, req.Limit())
	for i := range candidates {
		c := &candidates[i]
		if c.Similarity() < req.Threshold() {
			continue
		}
		doc := c.Document()
		var qSim, aSim float64
		if !domdoc.IsSentinelQuestion(doc.Question()) {
			if qSim, err = s.subSimilarity(ctx, queryVec, doc.Question()); err != nil {
				metrics.SearchRequestsTotal.WithLabelValues("similarity_text", "error").Inc()
				return nil, fmt.Errorf("question similarity for %s: %w", doc.ID(), err)
			}
		}
		if doc.HasAnswer() {
			if aSim, err = s.subSimilarity(ctx, queryVec, doc.Answer()); err != nil {
				metrics.SearchRequestsTotal.WithLabelValues("similarity_text", "error").Inc()
				return nil, fmt.Errorf("answer similarity for %s: %w", doc.ID(), err)
			}
		}
		survivors = append(survivors, c.WithSubScores(qSim, aSim, c.Similarity()))
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].OverallSimilarity() > survivors[j].OverallSimilarity()
	})
	if len(survivors) > req.Limit() {
		survivors = survivors[:req.Limit()]
	}

	metrics.SearchRequestsTotal.WithLabelValues("similarity_text", "success").Inc()
	metrics.SearchDuration.WithLabelValues("similarity_text").Observe(time.Since(start).Seconds())
	return survivors, nil
}

// subSimilarity embeds one candidate field and compares it against the
// query vector. Sentinel fields are filtered by the caller; any embedding
// or dimension failure here propagates.
func (s *Service) subSimilarity(ctx context.Context, queryVec []float32, text string) (float64, error) {
	embRes, err := s.embed.Embed(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("vectorize candidate field: %w", err)
	}
	sim, err := vector.Cosine(queryVec, embRes.Embedding)
	if err != nil {
		return 0, fmt.Errorf("candidate similarity: %w", err)
	}
	return sim, nil
}

// SearchByVector runs a store-ordered KNN search and applies only the
// threshold filter. Ordering by similarity is delegated to the store.
func (s *Service) SearchByVector(ctx context.Context, vec []float32, req *request.Similarity) ([]result.Similar, error) {
	start := time.Now()

	candidates, err := s.search.FindByVector(ctx, vec, req.Filter(), req.Limit())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("similarity_vector", "error").Inc()
		return nil, fmt.Errorf("knn search: %w", err)
	}

	out := candidates[:0]
	for _, c := range candidates {
		if c.Similarity() >= req.Threshold() {
			out = append(out, c)
		}
	}

	metrics.SearchRequestsTotal.WithLabelValues("similarity_vector", "success").Inc()
	metrics.SearchDuration.WithLabelValues("similarity_vector").Observe(time.Since(start).Seconds())
	return out, nil
}

// FindSimilarToDocument looks up similar documents seeded by a stored
// document's vector, excluding the document itself.
func (s *Service) FindSimilarToDocument(ctx context.Context, id string, req *request.Similarity) ([]result.Similar, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source document: %w", err)
	}
	if !doc.HasVector() {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrMissingVector)
	}

	scoped := req.WithExcludeID(id)
	return s.SearchByVector(ctx, doc.Vector(), &scoped)
}

// CompareQuestions estimates the similarity of two specific documents by
// scanning the first document's KNN window for the second. A pair outside
// the window reports 0.0; this is a bounded approximation, not a full
// pairwise computation.
func (s *Service) CompareQuestions(ctx context.Context, firstID, secondID string) (result.Comparison, error) {
	first, err := s.docs.Get(ctx, firstID)
	if err != nil {
		return result.Comparison{}, fmt.Errorf("get first document: %w", err)
	}
	second, err := s.docs.Get(ctx, secondID)
	if err != nil {
		return result.Comparison{}, fmt.Errorf("get second document: %w", err)
	}
	if !first.HasVector() {
		return result.Comparison{}, fmt.Errorf("document %s: %w", firstID, domain.ErrMissingVector)
	}
	if !second.HasVector() {
		return result.Comparison{}, fmt.Errorf("document %s: %w", secondID, domain.ErrMissingVector)
	}

	req, err := request.NewSimilarity(0, s.compareWindow, "", "", firstID)
	if err != nil {
		return result.Comparison{}, err
	}

	hits, err := s.SearchByVector(ctx, first.Vector(), &req)
	if err != nil {
		return result.Comparison{}, err
	}

	var score float64
	for i := range hits {
		if hits[i].Document().ID() == secondID {
			score = hits[i].Similarity()
			break
		}
	}

	return result.NewComparison(first, second, score, score >= request.DefaultDuplicateThreshold), nil
}
