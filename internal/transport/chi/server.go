// Package chi exposes the search and maintenance usecases over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/corpora-lab/qadex/internal/domain"
	"github.com/corpora-lab/qadex/internal/domain/document/patch"
	"github.com/corpora-lab/qadex/internal/domain/search/filter"
	"github.com/corpora-lab/qadex/internal/domain/search/relevance"
	"github.com/corpora-lab/qadex/internal/domain/search/request"
	logpkg "github.com/corpora-lab/qadex/internal/logger"
	documentuc "github.com/corpora-lab/qadex/internal/usecase/document"
	healthuc "github.com/corpora-lab/qadex/internal/usecase/health"
	keyworduc "github.com/corpora-lab/qadex/internal/usecase/keyword"
	similarityuc "github.com/corpora-lab/qadex/internal/usecase/similarity"
)

// Error codes returned in error response bodies.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeNotFound          = "not_found"
	codeInvalidThreshold  = "invalid_threshold"
	codeDimensionMismatch = "dimension_mismatch"
	codeMissingVector     = "missing_vector"
	codeEmbedderError     = "embedding_provider_error"
	codeEmbedderUnavail   = "embedder_unavailable"
	codeStoreUnavailable  = "store_unavailable"
	codeInternalError     = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the usecase services.
type Server struct {
	keyword            *keyworduc.Service
	similarity         *similarityuc.Service
	documents          *documentuc.Service
	health             *healthuc.Service
	defaultThreshold   float64
	duplicateThreshold float64
	logger             *zap.Logger
	errorHandlers      []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	keyword *keyworduc.Service,
	similarity *similarityuc.Service,
	documents *documentuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		keyword:            keyword,
		similarity:         similarity,
		documents:          documents,
		health:             health,
		duplicateThreshold: request.DefaultDuplicateThreshold,
		logger:             logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidThreshold, http.StatusBadRequest, codeInvalidThreshold),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, codeDimensionMismatch),
		sentinelHandler(domain.ErrMissingVector, http.StatusBadRequest, codeMissingVector),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbedderError),
		sentinelHandler(domain.ErrEmbedderUnavailable, http.StatusBadGateway, codeEmbedderUnavail),
		sentinelHandler(domain.ErrNotConnected, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// WithThresholds overrides the default similarity and duplicate
// thresholds applied when the query omits them.
func (s *Server) WithThresholds(similarity, duplicate float64) *Server {
	if similarity > 0 {
		s.defaultThreshold = similarity
	}
	if duplicate > 0 {
		s.duplicateThreshold = duplicate
	}
	return s
}

// Routes mounts all API routes onto r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/search/keyword", s.handleKeywordSearch)
		r.Get("/search/similar", s.handleSimilarSearch)
		r.Get("/compare", s.handleCompare)
		r.Get("/duplicates", s.handleDuplicates)
		r.Get("/categories", s.handleCategories)
		r.Get("/sources", s.handleSources)
		r.Get("/stats", s.handleStats)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.handleListDocuments)
			r.Get("/{id}", s.handleGetDocument)
			r.Patch("/{id}", s.handlePatchDocument)
			r.Delete("/{id}", s.handleDeleteDocument)
			r.Get("/{id}/similar", s.handleDocumentSimilar)
		})
	})
}

// handleKeywordSearch handles GET /v1/search/keyword.
func (s *Server) handleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	fields, err := parseFields(q.Get("fields"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	limit, err := queryInt(q.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid limit")
		return
	}
	caseSensitive := q.Get("case_sensitive") == "true"

	req, err := request.NewKeyword(q.Get("q"), fields, q.Get("category"), q.Get("source"), limit, caseSensitive)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	results, err := s.keyword.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]keywordResultItem, len(results))
	for i := range results {
		items[i] = keywordResultToWire(&results[i])
	}
	writeJSON(w, http.StatusOK, keywordResultList{Items: items, Total: len(items)})
}

// handleSimilarSearch handles GET /v1/search/similar.
func (s *Server) handleSimilarSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	text := q.Get("q")
	if text == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "q is required")
		return
	}

	req, ok := s.similarityRequest(w, r, q.Get("threshold"), q.Get("limit"), q.Get("category"), q.Get("source"))
	if !ok {
		return
	}

	results, err := s.similarity.SearchByText(r.Context(), text, &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := similarResultsToWire(results)
	writeJSON(w, http.StatusOK, similarResultList{Items: items, Total: len(items)})
}

// handleDocumentSimilar handles GET /v1/documents/{id}/similar.
func (s *Server) handleDocumentSimilar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()

	req, ok := s.similarityRequest(w, r, q.Get("threshold"), q.Get("limit"), q.Get("category"), q.Get("source"))
	if !ok {
		return
	}

	results, err := s.similarity.FindSimilarToDocument(r.Context(), id, &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := similarResultsToWire(results)
	writeJSON(w, http.StatusOK, similarResultList{Items: items, Total: len(items)})
}

// handleCompare handles GET /v1/compare?first=&second=.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	first, second := q.Get("first"), q.Get("second")
	if first == "" || second == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "first and second are required")
		return
	}

	cmp, err := s.similarity.CompareQuestions(r.Context(), first, second)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	firstDoc, secondDoc := cmp.First(), cmp.Second()
	writeJSON(w, http.StatusOK, comparisonResponse{
		First:           documentToWire(&firstDoc),
		Second:          documentToWire(&secondDoc),
		Similarity:      cmp.Similarity(),
		LikelyDuplicate: cmp.IsLikelyDuplicate(),
	})
}

// handleDuplicates handles GET /v1/duplicates.
func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	threshold, err := queryFloat(q.Get("threshold"), s.duplicateThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid threshold")
		return
	}
	perQuery, err := queryInt(q.Get("per_query_limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid per_query_limit")
		return
	}
	sampleSize, err := queryInt(q.Get("sample_size"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid sample_size")
		return
	}

	req, err := request.NewDuplicates(threshold, perQuery, sampleSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	groups, err := s.similarity.FindDuplicates(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]duplicateGroupItem, len(groups))
	for i := range groups {
		items[i] = groupToWire(&groups[i])
	}
	writeJSON(w, http.StatusOK, duplicateGroupList{Groups: items, Total: len(items)})
}

// handleListDocuments handles GET /v1/documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid limit")
		return
	}

	docs, err := s.documents.List(r.Context(), filter.New(q.Get("category"), q.Get("source")), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]documentResponse, len(docs))
	for i := range docs {
		items[i] = documentToWire(&docs[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

// handleGetDocument handles GET /v1/documents/{id}.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToWire(&doc))
}

// handlePatchDocument handles PATCH /v1/documents/{id}.
func (s *Server) handlePatchDocument(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	p, err := patch.New(req.Question, req.Answer, req.Category, req.Source)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	doc, err := s.documents.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToWire(&doc))
}

// handleDeleteDocument handles DELETE /v1/documents/{id}.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	existed, err := s.documents.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, codeNotFound, domain.ErrNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCategories handles GET /v1/categories.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	values, err := s.documents.Categories(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": values})
}

// handleSources handles GET /v1/sources.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	values, err := s.documents.Sources(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": values})
}

// handleStats handles GET /v1/stats. A count at or above the cap is
// reported as -1 with capped set.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	count, err := s.documents.Count(r.Context(), filter.New(q.Get("category"), q.Get("source")))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		DocumentCount: count,
		Capped:        count == documentuc.CountMany,
	})
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// similarityRequest parses the shared similarity query parameters.
// Reports false after writing the error response.
func (s *Server) similarityRequest(
	w http.ResponseWriter, r *http.Request, thresholdRaw, limitRaw, category, source string,
) (request.Similarity, bool) {
	threshold, err := queryFloat(thresholdRaw, s.defaultThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid threshold")
		return request.Similarity{}, false
	}
	limit, err := queryInt(limitRaw, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid limit")
		return request.Similarity{}, false
	}

	req, err := request.NewSimilarity(threshold, limit, category, source, "")
	if err != nil {
		s.handleDomainError(w, r, err)
		return request.Similarity{}, false
	}
	return req, true
}

func parseFields(raw string) ([]relevance.Field, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	fields := make([]relevance.Field, 0, len(parts))
	for _, p := range parts {
		f := relevance.Field(strings.TrimSpace(p))
		if f == "" {
			continue
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func queryFloat(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrNotConnected,
		domain.ErrMissingVector,
		domain.ErrDimensionMismatch,
		domain.ErrInvalidThreshold,
		domain.ErrEmbedderUnavailable,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	reqLogger := logpkg.FromContext(r.Context())
	reqLogger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	reqLogger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
